package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/generation"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/source"
	"github.com/reforge-labs/reforge/internal/source/connectors"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
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

	// MinIO
	minioClient, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := minioClient.EnsureBucket(ctx); err != nil {
		logger.Error("failed to ensure minio bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio")

	// GitHub client (a token is optional but raises the API rate limit)
	github, err := source.NewGitHubClient(cfg.GitHub, logger)
	if err != nil {
		logger.Error("failed to init github client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("no github token configured, unauthenticated rate limits apply")
	}

	// Connectors
	zipConn := connectors.NewZipConnector(minioClient)
	gitConn := connectors.NewGitConnector()

	// S3 connector (optional)
	var s3Conn *connectors.S3Connector
	if cfg.S3.Bucket != "" {
		s3Conn, err = connectors.NewS3Connector(cfg.S3)
		if err != nil {
			logger.Warn("s3 connector init failed", slog.String("error", err.Error()))
		} else {
			logger.Info("s3 connector enabled", slog.String("bucket", cfg.S3.Bucket))
		}
	}

	// Generation backend (auto-selects: OpenRouter > Bedrock > Gemini)
	gen, err := generation.New(ctx, cfg)
	if err != nil {
		logger.Error("generation backend init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if gen == nil {
		logger.Error("no generation backend configured, worker cannot review or rework files")
		os.Exit(1)
	}
	logger.Info("generation backend ready",
		slog.String("provider", fmt.Sprintf("%T", gen)),
		slog.String("model", gen.ModelID()))

	// Per-run progress streams
	events := pipeline.NewEventLog(vkClient, logger)

	// Pipeline stages
	stages := []pipeline.Stage{
		pipeline.NewFetchStage(s, github, gitConn, zipConn, s3Conn),
		pipeline.NewSelectStage(github, cfg.Select, logger),
		pipeline.NewReviewStage(s, gen, logger),
		pipeline.NewReworkStage(gen, events, logger),
		pipeline.NewArchiveStage(minioClient, logger),
	}

	pl := pipeline.NewPipeline(s, events, stages, cfg.Rework, logger)

	// Consumers share one group; each goroutine gets its own consumer ID so
	// pending messages are recovered per consumer after a crash.
	n := cfg.Worker.Consumers
	if n < 1 {
		n = 1
	}
	consumers := make([]*pipeline.Consumer, 0, n)
	for i := 1; i <= n; i++ {
		consumers = append(consumers, pipeline.NewConsumer(vkClient, fmt.Sprintf("worker-%d", i), logger))
	}
	if err := consumers[0].EnsureGroup(ctx); err != nil {
		logger.Error("failed to ensure consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *pipeline.Consumer) {
			defer wg.Done()
			logger.Info("starting worker, consuming from stream", slog.String("stream", pipeline.StreamName))
			if err := c.Consume(ctx, pl.Run); err != nil {
				if ctx.Err() == nil {
					logger.Error("consumer error", slog.String("error", err.Error()))
				}
			}
		}(c)
	}

	wg.Wait()
	logger.Info("worker stopped")
}
