package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/archive"
	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
)

// ArchiveKey names the object storage key holding a run's archive.
func ArchiveKey(runID uuid.UUID) string {
	return "archives/" + runID.String() + ".zip"
}

// ArchiveStage zips the generated file set and stores it in object storage
// under archives/{runID}.zip.
type ArchiveStage struct {
	minio  *minioclient.Client
	logger *slog.Logger
}

func NewArchiveStage(minio *minioclient.Client, logger *slog.Logger) *ArchiveStage {
	return &ArchiveStage{minio: minio, logger: logger}
}

func (s *ArchiveStage) Name() string { return StageArchive }

func (s *ArchiveStage) Execute(ctx context.Context, rc *RunContext) error {
	if s.minio == nil {
		return fmt.Errorf("object storage not configured")
	}

	data, err := archive.Build(rc.Generated)
	if err != nil {
		return err
	}

	key := ArchiveKey(rc.RunID)
	if err := s.minio.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}

	rc.ArchiveKey = key
	s.logger.Info("archive stored",
		slog.String("run_id", rc.RunID.String()),
		slog.String("key", key),
		slog.Int("bytes", len(data)))
	return nil
}
