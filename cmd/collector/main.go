package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chanpulse/chanpulse/internal/config"
	"github.com/chanpulse/chanpulse/internal/database"
	"github.com/chanpulse/chanpulse/internal/logger"
	"github.com/chanpulse/chanpulse/internal/migrator"
	"github.com/chanpulse/chanpulse/internal/nats"
	"github.com/chanpulse/chanpulse/internal/publisher"
	"github.com/chanpulse/chanpulse/internal/repository"
	"github.com/chanpulse/chanpulse/internal/stats"
	"github.com/chanpulse/chanpulse/internal/telegram"
	"github.com/chanpulse/chanpulse/migrations"
)

func main() {
	// 1. Load config (.env is optional, env vars win)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting stats collector")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Connect to database and apply migrations
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	mig, err := migrator.NewWithFS(migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load migrations")
	}
	if err := mig.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// 5. Connect to NATS (optional: outcomes are still logged without it)
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
	}

	var pub stats.OutcomePublisher
	if nc != nil {
		if err := nc.EnsureStream(ctx, "STATS", []string{"stats.>"}); err != nil {
			log.Warn().Err(err).Msg("failed to ensure nats stream")
		}
		pub = publisher.NewNATSPublisher(nc.Conn)
	}

	// 6. Initialize repositories
	snapshotsRepo := repository.NewSnapshotsRepository(db.Pool)
	metricsRepo := repository.NewDailyMetricsRepository(db.Pool)

	// 7. Initialize telegram manager and client
	tgManager := telegram.NewManager(cfg, db.GORM)
	if err := tgManager.Init(ctx); err != nil {
		log.Error().Err(err).Msg("telegram manager init failed")
		// continue; the gate reports the resulting status
	}
	tgClient := telegram.NewClient(tgManager)
	defer tgClient.Close()

	// 8. Run one collection pass
	gate := stats.NewGate(cfg.StatsEnabled, cfg.TelegramConfigured(), tgClient.Status)
	svc := stats.NewService(
		gate,
		tgClient,
		snapshotsRepo,
		metricsRepo,
		pub,
		cfg.Peers,
		cfg.WindowDays,
		cfg.MaxConcurrent,
		log,
	)

	report, err := svc.Run(ctx)
	switch {
	case errors.Is(err, stats.ErrDisabled):
		log.Info().Msg("stats collection is disabled, nothing to do")
		return
	case errors.Is(err, stats.ErrTelegramUnavailable):
		log.Fatal().Err(err).Msg("telegram is not available for stats collection")
	case err != nil:
		log.Fatal().Err(err).Msg("collection pass failed")
	}

	log.Info().
		Str("run_id", report.RunID.String()).
		Int("peers", report.Peers).
		Int("collected", report.Collected).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("collection pass finished")
}
