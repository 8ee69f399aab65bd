package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reforge-labs/reforge/internal/review"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store"
)

// ReviewStage runs the single review call over the selection and stores the
// result on the run. The review then rides along as shared context for every
// generation batch.
type ReviewStage struct {
	store  *store.Store
	gen    rework.Generator
	logger *slog.Logger
}

func NewReviewStage(s *store.Store, gen rework.Generator, logger *slog.Logger) *ReviewStage {
	return &ReviewStage{store: s, gen: gen, logger: logger}
}

func (s *ReviewStage) Name() string { return StageReview }

func (s *ReviewStage) Execute(ctx context.Context, rc *RunContext) error {
	text, err := review.Generate(ctx, s.gen, rc.Files)
	if err != nil {
		return err
	}

	if err := s.store.SetReworkRunReview(ctx, rc.RunID, text); err != nil {
		return fmt.Errorf("store review: %w", err)
	}

	rc.Review = text
	s.logger.Info("review stored",
		slog.String("run_id", rc.RunID.String()),
		slog.Int("chars", len(text)))
	return nil
}
