package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTestChart(t *testing.T, data string) *Graph {
	t.Helper()
	g, _, err := DecodeGraph(context.Background(), nil, 0, inlineGraph(data))
	require.NoError(t, err)
	return g
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d.UTC()
}

func TestDailySeries(t *testing.T) {
	g := decodeTestChart(t, demoChart)

	points, err := DailySeries(g, "")
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, day(t, "2025-01-01"), points[0].Day)
	assert.EqualValues(t, 100, points[0].Value)
	assert.Equal(t, day(t, "2025-01-02"), points[1].Day)
	assert.EqualValues(t, 140, points[1].Value)
}

func TestDailySeries_ColumnOverride(t *testing.T) {
	chart := `{
		"columns": [
			["x", 1735689600000, 1735776000000],
			["y0", 1, 2],
			["y1", 10, 20]
		],
		"types": {"x": "x", "y0": "line", "y1": "line"}
	}`
	g := decodeTestChart(t, chart)

	// default: first data column
	points, err := DailySeries(g, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, points[0].Value)

	// explicit override
	points, err = DailySeries(g, "y1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, points[0].Value)
	assert.EqualValues(t, 20, points[1].Value)

	// unknown column is an error, never a silent fallback
	_, err = DailySeries(g, "y9")
	assert.Error(t, err)

	// the x axis is not a data column
	_, err = DailySeries(g, "x")
	assert.Error(t, err)
}

func TestDailySeries_EmptyGraph(t *testing.T) {
	points, err := DailySeries(nil, "")
	require.NoError(t, err)
	assert.Empty(t, points)

	g := decodeTestChart(t, `{"columns":[["x"],["y0"]],"types":{"x":"x","y0":"line"}}`)
	points, err = DailySeries(g, "")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDailySeries_XOnlyChart(t *testing.T) {
	g := decodeTestChart(t, `{"columns":[["x",1735689600000]],"types":{"x":"x"}}`)
	points, err := DailySeries(g, "")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDailySeries_SameDayCollapses(t *testing.T) {
	// 2025-01-01T00:00 and 2025-01-01T12:00 fall on the same day.
	chart := `{
		"columns": [
			["x", 1735689600000, 1735732800000],
			["y0", 100, 130]
		],
		"types": {"x": "x", "y0": "line"}
	}`
	g := decodeTestChart(t, chart)

	points, err := DailySeries(g, "")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.EqualValues(t, 130, points[0].Value)
}

func TestDailySeries_OldestFirst(t *testing.T) {
	chart := `{
		"columns": [
			["x", 1735776000000, 1735689600000],
			["y0", 140, 100]
		],
		"types": {"x": "x", "y0": "line"}
	}`
	g := decodeTestChart(t, chart)

	points, err := DailySeries(g, "")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Day.Before(points[1].Day))
	assert.EqualValues(t, 100, points[0].Value)
}
