package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DailyPoint is one materialized (day, value) observation extracted
// from a decoded graph. Day is midnight UTC.
type DailyPoint struct {
	Day   time.Time
	Value int64
}

// DailySeries extracts one value per calendar day from a decoded
// graph, oldest first. An empty result is valid: a fresh channel may
// have a graph with no points yet.
//
// Column policy: columnID selects the series explicitly (the peer list
// can carry an override per peer); an empty columnID picks the first
// column that is not the x axis. Multiple columns are never averaged.
// Several points falling on the same day collapse to the last one.
func DailySeries(g *Graph, columnID string) ([]DailyPoint, error) {
	if g == nil || len(g.Columns) == 0 {
		return nil, nil
	}

	var x *Column
	for i := range g.Columns {
		if g.isX(g.Columns[i].ID) {
			x = &g.Columns[i]
			break
		}
	}
	if x == nil {
		return nil, fmt.Errorf("graph has no x column")
	}

	var data *Column
	if columnID != "" {
		for i := range g.Columns {
			if g.Columns[i].ID == columnID {
				data = &g.Columns[i]
				break
			}
		}
		if data == nil {
			return nil, fmt.Errorf("column %q not present in graph", columnID)
		}
		if g.isX(data.ID) {
			return nil, fmt.Errorf("column %q is the x axis", columnID)
		}
	} else {
		for i := range g.Columns {
			if !g.isX(g.Columns[i].ID) {
				data = &g.Columns[i]
				break
			}
		}
		if data == nil {
			// x-only chart: no data columns yet
			return nil, nil
		}
	}

	n := min(len(x.Values), len(data.Values))
	byDay := make(map[time.Time]int64, n)
	for i := 0; i < n; i++ {
		day := time.UnixMilli(int64(x.Values[i])).UTC().Truncate(24 * time.Hour)
		byDay[day] = int64(math.Round(data.Values[i]))
	}

	points := make([]DailyPoint, 0, len(byDay))
	for day, value := range byDay {
		points = append(points, DailyPoint{Day: day, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })

	return points, nil
}
