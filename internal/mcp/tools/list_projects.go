package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reforge-labs/reforge/internal/mcp"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// ListProjectsParams are the parameters for the list_projects tool.
type ListProjectsParams struct {
	Limit int32 `json:"limit,omitempty"`
}

// ListProjectsHandler implements the list_projects MCP tool.
type ListProjectsHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewListProjectsHandler creates a new handler.
func NewListProjectsHandler(s *store.Store, logger *slog.Logger) *ListProjectsHandler {
	return &ListProjectsHandler{store: s, logger: logger}
}

// Handle lists registered projects with their slugs.
func (h *ListProjectsHandler) Handle(ctx context.Context, params ListProjectsParams) (string, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	projects, err := h.store.ListProjects(ctx, postgres.ListProjectsParams{
		Limit:  params.Limit,
		Offset: 0,
	})
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		return "No projects found.", nil
	}

	rb := mcp.NewResponseBuilder(4000)
	rb.AddHeader(fmt.Sprintf("**Projects** (%d found)", len(projects)))

	for _, proj := range projects {
		if !rb.AddLine(formatProjectLine(proj)) {
			break
		}
	}

	return rb.Finalize(len(projects), rb.ItemCount()), nil
}

func formatProjectLine(proj postgres.Project) string {
	desc := ""
	if proj.Description.Valid && proj.Description.String != "" {
		desc = " — " + proj.Description.String
	}
	return fmt.Sprintf("- **%s** (`%s`)%s", proj.Name, proj.Slug, desc)
}
