package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/mcp"
	"github.com/reforge-labs/reforge/internal/store"
)

// GetReviewParams are the parameters for the get_review tool.
type GetReviewParams struct {
	RunID             string `json:"run_id"`
	MaxResponseTokens int    `json:"max_response_tokens,omitempty"`
}

// GetReviewHandler implements the get_review MCP tool.
type GetReviewHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewGetReviewHandler creates a new handler.
func NewGetReviewHandler(s *store.Store, logger *slog.Logger) *GetReviewHandler {
	return &GetReviewHandler{store: s, logger: logger}
}

// Handle returns the review text a run produced, budget-truncated.
func (h *GetReviewHandler) Handle(ctx context.Context, params GetReviewParams) (string, error) {
	id, err := uuid.Parse(params.RunID)
	if err != nil {
		return "", fmt.Errorf("run_id is not a valid UUID")
	}

	run, err := h.store.GetReworkRun(ctx, id)
	if err != nil {
		return "", WrapRunError(err)
	}

	if !run.Review.Valid || run.Review.String == "" {
		return "", fmt.Errorf("run %s has no review yet (status: %s)", run.ID, run.Status)
	}

	rb := mcp.NewResponseBuilder(params.MaxResponseTokens)
	rb.AddHeader(fmt.Sprintf("**Review for run `%s`**", run.ID))
	rb.AddRawText(run.Review.String)
	return rb.Finalize(1, 1), nil
}
