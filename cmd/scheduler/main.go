package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
	vk "github.com/reforge-labs/reforge/internal/store/valkey"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	producer := pipeline.NewProducer(vkClient)

	logger.Info("starting scheduler",
		slog.Duration("interval", cfg.Scheduler.Interval),
		slog.Duration("queued_timeout", cfg.Scheduler.QueuedTimeout),
		slog.Duration("running_timeout", cfg.Scheduler.RunningTimeout))

	ticker := time.NewTicker(cfg.Scheduler.Interval)
	defer ticker.Stop()

	sweep(ctx, logger, s, producer, cfg.Scheduler)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			sweep(ctx, logger, s, producer, cfg.Scheduler)
		}
	}
}

// sweep requeues runs that never reached a worker and fails runs whose
// worker died mid-flight. Requeueing a run a worker meanwhile picked up is
// harmless: the queued -> running status guard makes the duplicate a no-op.
func sweep(ctx context.Context, logger *slog.Logger, s *store.Store, producer *pipeline.Producer, cfg config.SchedulerConfig) {
	stuck, err := s.ListStuckQueuedRuns(ctx, time.Now().Add(-cfg.QueuedTimeout))
	if err != nil {
		logger.Error("list stuck queued runs", slog.String("error", err.Error()))
	}
	for _, run := range stuck {
		msg := pipeline.ReworkMessage{
			RunID:     run.ID,
			ProjectID: run.ProjectID,
			Trigger:   "schedule",
		}
		if run.SourceID.Valid {
			msg.SourceID = uuid.UUID(run.SourceID.Bytes)
		}
		if _, err := producer.Enqueue(ctx, msg); err != nil {
			logger.Error("requeue run", slog.String("error", err.Error()),
				slog.String("run_id", run.ID.String()))
			continue
		}
		logger.Info("requeued stuck run",
			slog.String("run_id", run.ID.String()),
			slog.Time("created_at", run.CreatedAt))
	}

	failed, err := s.FailStuckRunningRuns(ctx, time.Now().Add(-cfg.RunningTimeout))
	if err != nil {
		logger.Error("fail stuck running runs", slog.String("error", err.Error()))
		return
	}
	if failed > 0 {
		logger.Warn("failed stuck running runs", slog.Int64("count", failed))
	}
}
