package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/mcp"
	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// GetRunStatusParams are the parameters for the get_run_status tool.
type GetRunStatusParams struct {
	RunID string `json:"run_id"`
}

// GetRunStatusHandler implements the get_run_status MCP tool.
type GetRunStatusHandler struct {
	store  *store.Store
	events *pipeline.EventLog
	logger *slog.Logger
}

// NewGetRunStatusHandler creates a new handler. events may be nil; the
// status card then omits the progress tail.
func NewGetRunStatusHandler(s *store.Store, events *pipeline.EventLog, logger *slog.Logger) *GetRunStatusHandler {
	return &GetRunStatusHandler{store: s, events: events, logger: logger}
}

// Handle reports a run's lifecycle state and its recent progress events.
func (h *GetRunStatusHandler) Handle(ctx context.Context, params GetRunStatusParams) (string, error) {
	id, err := uuid.Parse(params.RunID)
	if err != nil {
		return "", fmt.Errorf("run_id is not a valid UUID")
	}

	run, err := h.store.GetReworkRun(ctx, id)
	if err != nil {
		return "", WrapRunError(err)
	}

	rb := mcp.NewResponseBuilder(2000)
	header := fmt.Sprintf("**Run `%s`**", run.ID)
	if proj, err := h.store.GetProject(ctx, run.ProjectID); err == nil {
		header = fmt.Sprintf("**Run `%s`** in project `%s`", run.ID, proj.Slug)
	}
	rb.AddHeader(header)
	rb.AddLine(formatRunSummary(run))

	if h.events != nil {
		stored, err := h.events.Replay(ctx, run.ID)
		if err != nil {
			h.logger.Warn("event replay failed", slog.String("run_id", run.ID.String()), slog.String("error", err.Error()))
		} else if len(stored) > 0 {
			// Last ten events, newest last.
			tail := stored
			if len(tail) > 10 {
				tail = tail[len(tail)-10:]
			}
			var b strings.Builder
			for _, ev := range tail {
				b.WriteString(formatEventLine(ev))
				b.WriteString("\n")
			}
			rb.AddSection("Recent progress", strings.TrimRight(b.String(), "\n"))
		}
	}

	return rb.Finalize(0, 0), nil
}

func formatRunSummary(run postgres.ReworkRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Status: **%s**\n", run.Status)
	fmt.Fprintf(&b, "- Created: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if run.StartedAt.Valid {
		fmt.Fprintf(&b, "- Started: %s\n", run.StartedAt.Time.Format("2006-01-02 15:04:05 MST"))
	}
	if run.FinishedAt.Valid {
		fmt.Fprintf(&b, "- Finished: %s\n", run.FinishedAt.Time.Format("2006-01-02 15:04:05 MST"))
	}
	if run.Status == postgres.RunStatusCompleted {
		fmt.Fprintf(&b, "- Files generated: %d\n", run.FileCount)
	}
	if len(run.FailedCategories) > 0 {
		fmt.Fprintf(&b, "- Failed categories: %s\n", strings.Join(run.FailedCategories, ", "))
	}
	if run.Error.Valid && run.Error.String != "" {
		fmt.Fprintf(&b, "- Error: %s\n", run.Error.String)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEventLine(ev pipeline.StoredEvent) string {
	switch ev.Kind {
	case rework.EventBatchStarted:
		return fmt.Sprintf("- `%s` %s: batch %d/%d (%d files)", ev.Kind, ev.Category, ev.BatchIndex, ev.BatchCount, ev.FileCount)
	case rework.EventBatchFailed:
		return fmt.Sprintf("- `%s` %s: batch %d/%d attempt %d: %s", ev.Kind, ev.Category, ev.BatchIndex, ev.BatchCount, ev.Attempt, ev.Err)
	case rework.EventCategoryDone:
		return fmt.Sprintf("- `%s` %s (%d batches)", ev.Kind, ev.Category, ev.BatchCount)
	case rework.EventCompleted:
		return fmt.Sprintf("- `%s` %d files", ev.Kind, ev.FileCount)
	case rework.EventFatal:
		return fmt.Sprintf("- `%s` %s", ev.Kind, ev.Err)
	default:
		return fmt.Sprintf("- `%s`", ev.Kind)
	}
}
