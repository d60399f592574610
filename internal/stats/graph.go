// Package stats implements the channel statistics collector: graph
// decoding, daily series extraction and the orchestration of one
// collection pass over the configured peers.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gotd/td/tg"
)

// Graph decode errors. All of them are recovered at the single-graph
// level: one bad graph skips that metric, never the peer.
var (
	ErrGraphMalformed     = errors.New("malformed graph payload")
	ErrGraphUpstream      = errors.New("upstream graph error")
	ErrGraphStillDeferred = errors.New("deferred graph resolved to another deferred graph")
)

// AsyncGraphLoader exchanges a deferred graph token for the actual
// graph. dc names the data center the stats response came from.
type AsyncGraphLoader interface {
	LoadAsyncGraph(ctx context.Context, dc int, token string) (tg.StatsGraphClass, error)
}

// Graph is a decoded upstream chart: a set of named columns, one of
// which is the x axis carrying unix-millisecond timestamps.
type Graph struct {
	Columns []Column
	Types   map[string]string
	Names   map[string]string
}

// Column is one series of a chart. The first element of the upstream
// column array is the id; the rest are numeric values.
type Column struct {
	ID     string
	Values []float64
}

// isX reports whether the column id denotes the time axis.
func (g *Graph) isX(id string) bool {
	if t, ok := g.Types[id]; ok {
		return t == "x"
	}
	return id == "x"
}

// chartPayload is the upstream self-describing chart format.
type chartPayload struct {
	Columns [][]any           `json:"columns"`
	Types   map[string]string `json:"types"`
	Names   map[string]string `json:"names"`
}

// DecodeGraph normalizes the two upstream graph shapes into a Graph
// plus the generic payload stored as the raw snapshot. An inline graph
// decodes directly; a deferred graph costs one loadAsyncGraph exchange
// first. The exchange result must itself be inline: the protocol does
// not chain deferrals, so a second token is treated as an error.
func DecodeGraph(ctx context.Context, loader AsyncGraphLoader, dc int, g tg.StatsGraphClass) (*Graph, map[string]any, error) {
	switch v := g.(type) {
	case *tg.StatsGraph:
		return decodeChart(v.JSON.Data)

	case *tg.StatsGraphAsync:
		resolved, err := loader.LoadAsyncGraph(ctx, dc, v.Token)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve graph token: %w", err)
		}
		switch r := resolved.(type) {
		case *tg.StatsGraph:
			return decodeChart(r.JSON.Data)
		case *tg.StatsGraphError:
			return nil, nil, fmt.Errorf("%w: %s", ErrGraphUpstream, r.Error)
		default:
			return nil, nil, ErrGraphStillDeferred
		}

	case *tg.StatsGraphError:
		return nil, nil, fmt.Errorf("%w: %s", ErrGraphUpstream, v.Error)

	default:
		return nil, nil, fmt.Errorf("%w: unexpected graph type %T", ErrGraphMalformed, g)
	}
}

// decodeChart parses the chart JSON into both the typed Graph and the
// generic payload persisted for audit.
func decodeChart(data string) (*Graph, map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGraphMalformed, err)
	}

	var chart chartPayload
	if err := json.Unmarshal([]byte(data), &chart); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGraphMalformed, err)
	}

	g := &Graph{
		Types: chart.Types,
		Names: chart.Names,
	}
	for _, col := range chart.Columns {
		if len(col) == 0 {
			continue
		}
		id, ok := col[0].(string)
		if !ok {
			return nil, nil, fmt.Errorf("%w: column id is not a string", ErrGraphMalformed)
		}
		values := make([]float64, 0, len(col)-1)
		for _, raw := range col[1:] {
			f, ok := raw.(float64)
			if !ok {
				return nil, nil, fmt.Errorf("%w: non-numeric value in column %s", ErrGraphMalformed, id)
			}
			values = append(values, f)
		}
		g.Columns = append(g.Columns, Column{ID: id, Values: values})
	}

	return g, payload, nil
}
