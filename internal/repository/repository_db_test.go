package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/chanpulse/chanpulse/internal/database"
	"github.com/chanpulse/chanpulse/internal/migrator"
	"github.com/chanpulse/chanpulse/migrations"
)

func testDB(t *testing.T) (*database.DB, string) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST=1 to run")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := database.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("failed to connect to db: %v", err)
	}
	t.Cleanup(db.Close)

	mig, err := migrator.NewWithFS(migrations.FS)
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}
	if err := mig.Up(dbURL); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db, dbURL
}

func TestSnapshotsRepository_SaveIsAppendOnly(t *testing.T) {
	db, _ := testDB(t)
	ctx := context.Background()

	const channelID = int64(990001)
	_, err := db.Pool.Exec(ctx, "DELETE FROM raw_graph_snapshots WHERE channel_id = $1", channelID)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	repo := NewSnapshotsRepository(db.Pool)
	payload := map[string]any{"columns": []any{[]any{"x", float64(1735689600000)}}}

	if err := repo.Save(ctx, channelID, "growth", payload); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := repo.Save(ctx, channelID, "growth", payload); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	var count int
	err = db.Pool.QueryRow(ctx,
		"SELECT count(*) FROM raw_graph_snapshots WHERE channel_id = $1 AND metric_key = 'growth'",
		channelID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 snapshot rows, got %d", count)
	}
}

func TestDailyMetricsRepository_UpsertOverwrites(t *testing.T) {
	db, _ := testDB(t)
	ctx := context.Background()

	const channelID = int64(990002)
	_, err := db.Pool.Exec(ctx, "DELETE FROM channel_daily_metrics WHERE channel_id = $1", channelID)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	repo := NewDailyMetricsRepository(db.Pool)
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := repo.Upsert(ctx, channelID, day, "growth", 140); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// a later run ships a revised value for the same day
	if err := repo.Upsert(ctx, channelID, day, "growth", 150); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// a timestamp inside the day lands on the same row
	if err := repo.Upsert(ctx, channelID, day.Add(13*time.Hour), "growth", 155); err != nil {
		t.Fatalf("upsert with intra-day timestamp failed: %v", err)
	}

	var count int
	var value int64
	err = db.Pool.QueryRow(ctx,
		"SELECT count(*), max(value) FROM channel_daily_metrics WHERE channel_id = $1 AND metric_key = 'growth'",
		channelID,
	).Scan(&count, &value)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 metric row, got %d", count)
	}
	if value != 155 {
		t.Errorf("expected latest value 155, got %d", value)
	}
}
