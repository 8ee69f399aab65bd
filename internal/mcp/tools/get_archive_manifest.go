package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/archive"
	"github.com/reforge-labs/reforge/internal/mcp"
	"github.com/reforge-labs/reforge/internal/store"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// GetArchiveManifestParams are the parameters for the get_archive_manifest tool.
type GetArchiveManifestParams struct {
	RunID string `json:"run_id"`
}

// GetArchiveManifestHandler implements the get_archive_manifest MCP tool.
type GetArchiveManifestHandler struct {
	store  *store.Store
	minio  *minioclient.Client
	logger *slog.Logger
}

// NewGetArchiveManifestHandler creates a new handler.
func NewGetArchiveManifestHandler(s *store.Store, minio *minioclient.Client, logger *slog.Logger) *GetArchiveManifestHandler {
	return &GetArchiveManifestHandler{store: s, minio: minio, logger: logger}
}

// Handle lists the entries of a completed run's archive without extracting it.
func (h *GetArchiveManifestHandler) Handle(ctx context.Context, params GetArchiveManifestParams) (string, error) {
	if h.minio == nil {
		return "", fmt.Errorf("object storage is not available")
	}

	id, err := uuid.Parse(params.RunID)
	if err != nil {
		return "", fmt.Errorf("run_id is not a valid UUID")
	}

	run, err := h.store.GetReworkRun(ctx, id)
	if err != nil {
		return "", WrapRunError(err)
	}
	if run.Status != postgres.RunStatusCompleted || !run.ArchiveKey.Valid {
		return "", fmt.Errorf("run %s has no archive yet (status: %s)", run.ID, run.Status)
	}

	obj, err := h.minio.DownloadFile(ctx, run.ArchiveKey.String)
	if err != nil {
		return "", fmt.Errorf("fetch archive: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("read archive: %w", err)
	}

	entries, err := archive.Manifest(data)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	rb := mcp.NewResponseBuilder(4000)
	rb.AddHeader(fmt.Sprintf("**Archive for run `%s`** (%d files, %d bytes zipped)", run.ID, len(entries), len(data)))

	for _, e := range entries {
		if !rb.AddLine(fmt.Sprintf("- `%s` (%d bytes)", e.Path, e.Size)) {
			break
		}
	}

	return rb.Finalize(len(entries), rb.ItemCount()), nil
}
