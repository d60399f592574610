// Package models defines shared data types for the application.
package models

import (
	"time"
)

// RawGraphSnapshot is one fetched graph exactly as returned by the
// stats API, decoded to a generic structure. Snapshots are append-only:
// re-runs add new rows with later fetch timestamps.
type RawGraphSnapshot struct {
	ID        int64          `json:"id" db:"id"`
	ChannelID int64          `json:"channel_id" db:"channel_id"`
	MetricKey string         `json:"metric_key" db:"metric_key"`
	Payload   map[string]any `json:"payload" db:"payload"`
	FetchedAt time.Time      `json:"fetched_at" db:"fetched_at"`
}

// DailyMetricPoint is one materialized numeric observation.
// At most one row exists per (channel, day, metric); later runs
// overwrite the value as the upstream graph settles.
type DailyMetricPoint struct {
	ChannelID int64     `json:"channel_id" db:"channel_id"`
	Day       time.Time `json:"day" db:"day"`
	MetricKey string    `json:"metric_key" db:"metric_key"`
	Value     int64     `json:"value" db:"value"`
}
