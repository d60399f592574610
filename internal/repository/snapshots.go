// Package repository provides access to the collector's postgres tables.
package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotsRepository handles the raw_graph_snapshots table.
// The table is an append-only audit log: Save only ever inserts, and
// no read path exists in this subsystem.
type SnapshotsRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotsRepository creates a new snapshots repository.
func NewSnapshotsRepository(pool *pgxpool.Pool) *SnapshotsRepository {
	return &SnapshotsRepository{pool: pool}
}

// Save appends one decoded graph payload. The fetch timestamp is
// assigned by the database with microsecond resolution, so concurrent
// saves for the same (channel, metric) never collide.
func (r *SnapshotsRepository) Save(ctx context.Context, channelID int64, metricKey string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal snapshot payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO raw_graph_snapshots (channel_id, metric_key, payload)
		VALUES ($1, $2, $3)
	`, channelID, metricKey, data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
