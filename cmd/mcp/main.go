package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/mcp/tools"
	"github.com/reforge-labs/reforge/internal/pipeline"
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

	// Valkey (optional; start_rework and run progress need it)
	var producer *pipeline.Producer
	var events *pipeline.EventLog
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Warn("valkey unavailable, start_rework disabled", slog.String("error", err.Error()))
	} else {
		defer vkClient.Close()
		producer = pipeline.NewProducer(vkClient)
		events = pipeline.NewEventLog(vkClient, logger)
		logger.Info("connected to valkey")
	}

	// MinIO (optional; archive manifests need it)
	var minioClient *minioclient.Client
	minioClient, err = minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Warn("minio unavailable, archive manifests disabled", slog.String("error", err.Error()))
		minioClient = nil
	} else {
		logger.Info("connected to minio")
	}

	// Tool handlers are wired here rather than in internal/mcp to avoid an
	// import cycle between the package holding the response builder and the
	// tools that use it.
	listProjects := tools.NewListProjectsHandler(s, logger)
	startRework := tools.NewStartReworkHandler(s, producer, logger)
	getRunStatus := tools.NewGetRunStatusHandler(s, events, logger)
	getReview := tools.NewGetReviewHandler(s, logger)
	getArchiveManifest := tools.NewGetArchiveManifestHandler(s, minioClient, logger)

	// SDK MCP server
	sdkServer := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "reforge", Version: "1.0.0"}, nil)

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List registered projects. Returns project slug, name, and description.",
	}, tools.WrapHandler[tools.ListProjectsParams](listProjects))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "start_rework",
		Description: "Start a rework run for a project. Fetches the project's source, reviews the selected files, and regenerates improved versions into a downloadable archive. Uses the project's latest source unless a source ID is given.",
	}, tools.WrapHandler[tools.StartReworkParams](startRework))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "get_run_status",
		Description: "Get the status of a rework run: lifecycle state, file counts, failed categories, and the most recent progress events.",
	}, tools.WrapHandler[tools.GetRunStatusParams](getRunStatus))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "get_review",
		Description: "Fetch the model's review of the files selected for a rework run. The review explains what the rework pass will improve.",
	}, tools.WrapHandler[tools.GetReviewParams](getReview))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "get_archive_manifest",
		Description: "List the files inside a completed run's result archive without downloading it. Returns per-file paths and sizes.",
	}, tools.WrapHandler[tools.GetArchiveManifestParams](getArchiveManifest))

	// Use Stateless mode so that stale session IDs from server restarts
	// (hot-reload) are ignored rather than returning 404. Each request gets a
	// pre-initialized temporary session.
	sdkHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return sdkServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", sdkHandler)
	// Also serve on root for clients that don't set a path
	mux.Handle("/", sdkHandler)

	httpServer := &http.Server{Addr: cfg.MCP.Addr, Handler: mux}

	go func() {
		logger.Info("MCP server listening", slog.String("addr", cfg.MCP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP HTTP server error", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("MCP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("MCP HTTP shutdown", slog.String("error", err.Error()))
	}
	logger.Info("MCP server stopped")
}
