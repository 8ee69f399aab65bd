package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/reforge-labs/reforge/internal/mcp"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// StartReworkParams are the parameters for the start_rework tool.
type StartReworkParams struct {
	ProjectSlug string `json:"project_slug"`
	SourceID    string `json:"source_id,omitempty"`
}

// StartReworkHandler implements the start_rework MCP tool.
type StartReworkHandler struct {
	store    *store.Store
	producer *pipeline.Producer
	logger   *slog.Logger
}

// NewStartReworkHandler creates a new handler.
func NewStartReworkHandler(s *store.Store, producer *pipeline.Producer, logger *slog.Logger) *StartReworkHandler {
	return &StartReworkHandler{store: s, producer: producer, logger: logger}
}

// Handle queues a rework run for a project, against an explicit source or
// the project's most recently added one.
func (h *StartReworkHandler) Handle(ctx context.Context, params StartReworkParams) (string, error) {
	if params.ProjectSlug == "" {
		return "", fmt.Errorf("project_slug is required")
	}
	if h.producer == nil {
		return "", fmt.Errorf("run queue is not available")
	}

	project, err := h.store.GetProjectBySlug(ctx, params.ProjectSlug)
	if err != nil {
		return "", WrapProjectError(err)
	}

	var src postgres.Source
	if params.SourceID != "" {
		id, err := uuid.Parse(params.SourceID)
		if err != nil {
			return "", fmt.Errorf("source_id is not a valid UUID")
		}
		src, err = h.store.GetSource(ctx, id)
		if err != nil {
			return "", fmt.Errorf("source not found")
		}
		if src.ProjectID != project.ID {
			return "", fmt.Errorf("source does not belong to project %q", project.Slug)
		}
	} else {
		src, err = h.store.GetLatestSourceByProject(ctx, project.ID)
		if err != nil {
			return "", fmt.Errorf("project %q has no sources; add one first", project.Slug)
		}
	}

	run, err := h.store.CreateReworkRun(ctx, postgres.CreateReworkRunParams{
		ProjectID: project.ID,
		SourceID:  pgtype.UUID{Bytes: src.ID, Valid: true},
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	if _, err := h.producer.Enqueue(ctx, pipeline.ReworkMessage{
		RunID:     run.ID,
		ProjectID: project.ID,
		SourceID:  src.ID,
		Trigger:   "manual",
	}); err != nil {
		h.logger.Warn("enqueue failed, run left for scheduler",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
	}

	rb := mcp.NewResponseBuilder(1000)
	rb.AddHeader("**Rework run queued**")
	rb.AddLine(fmt.Sprintf("- Run ID: `%s`", run.ID))
	rb.AddLine(fmt.Sprintf("- Project: **%s** (`%s`)", project.Name, project.Slug))
	rb.AddLine(fmt.Sprintf("- Source: %s `%s`", src.Type, src.URI))
	rb.AddLine(fmt.Sprintf("- Status: %s", run.Status))
	rb.AddLine("")
	rb.AddLine("Use `get_run_status` with this run ID to follow progress.")
	return rb.Finalize(0, 0), nil
}
