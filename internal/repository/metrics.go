package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyMetricsRepository handles the channel_daily_metrics table.
type DailyMetricsRepository struct {
	pool *pgxpool.Pool
}

// NewDailyMetricsRepository creates a new daily metrics repository.
func NewDailyMetricsRepository(pool *pgxpool.Pool) *DailyMetricsRepository {
	return &DailyMetricsRepository{pool: pool}
}

// Upsert writes one (channel, day, metric) observation. Last write
// wins: re-running collection for a day the upstream has since revised
// overwrites the value instead of accumulating rows.
func (r *DailyMetricsRepository) Upsert(ctx context.Context, channelID int64, day time.Time, metricKey string, value int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channel_daily_metrics (channel_id, day, metric_key, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT channel_daily_metrics_key
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, channelID, day.UTC().Truncate(24*time.Hour), metricKey, value)
	if err != nil {
		return fmt.Errorf("upsert daily metric: %w", err)
	}
	return nil
}
