package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reforge-labs/reforge/internal/config"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// Pipeline orchestrates the rework stages for each queued run:
// fetch → select → review → rework → archive.
//
// A run is claimed with a guarded queued → running transition, so a
// redelivered or janitor-requeued message for a run that is already running
// or finished is acknowledged without doing work. A stage error marks the
// run failed and discards everything the run produced so far.
type Pipeline struct {
	store  *store.Store
	events *EventLog
	stages []Stage
	cfg    config.ReworkConfig
	logger *slog.Logger
}

func NewPipeline(s *store.Store, events *EventLog, stages []Stage, cfg config.ReworkConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: s, events: events, stages: stages, cfg: cfg, logger: logger}
}

// Run processes a single rework message through every stage.
func (p *Pipeline) Run(ctx context.Context, msg ReworkMessage) error {
	p.logger.Info("pipeline started",
		slog.String("run_id", msg.RunID.String()),
		slog.String("trigger", msg.Trigger))

	run, err := p.store.MarkReworkRunRunning(ctx, msg.RunID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already claimed by another consumer or finished; safe to ack.
			p.logger.Info("run not claimable, skipping",
				slog.String("run_id", msg.RunID.String()))
			return nil
		}
		return fmt.Errorf("claim run: %w", err)
	}

	rc := &RunContext{
		RunID:     msg.RunID,
		ProjectID: msg.ProjectID,
		SourceID:  msg.SourceID,
		Trigger:   msg.Trigger,
		Rework:    p.resolveConfig(run),
	}
	defer func() {
		if rc.WorkDir != "" {
			_ = os.RemoveAll(rc.WorkDir)
		}
	}()

	for _, stage := range p.stages {
		p.logger.Info("stage started",
			slog.String("stage", stage.Name()),
			slog.String("run_id", msg.RunID.String()))

		if err := stage.Execute(ctx, rc); err != nil {
			p.fail(ctx, msg.RunID, stage.Name(), err)
			return fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}

		p.logger.Info("stage completed",
			slog.String("stage", stage.Name()),
			slog.String("run_id", msg.RunID.String()))
	}

	if _, err := p.store.CompleteReworkRun(ctx, postgres.CompleteReworkRunParams{
		ID:               msg.RunID,
		ArchiveKey:       rc.ArchiveKey,
		FileCount:        int32(len(rc.Generated)),
		FailedCategories: rc.FailedCategories,
	}); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	p.logger.Info("pipeline completed",
		slog.String("run_id", msg.RunID.String()),
		slog.Int("files", len(rc.Generated)),
		slog.Int("failed_categories", len(rc.FailedCategories)))

	return nil
}

// resolveConfig merges the run row's overrides onto the service defaults.
// The result is fully resolved: Categories is never left empty.
func (p *Pipeline) resolveConfig(run postgres.ReworkRun) rework.Config {
	cfg := rework.Config{
		Categories:    rework.DefaultCategories(),
		MaxBatchChars: p.cfg.MaxBatchChars,
		Retry: rework.RetryPolicy{
			MaxAttempts: p.cfg.RetryMaxAttempts,
			Backoff:     p.cfg.RetryBackoff,
		},
		ContinueOnFailure: p.cfg.ContinueOnFailure,
	}

	if len(run.Categories) > 0 {
		var cats []rework.Category
		if err := json.Unmarshal(run.Categories, &cats); err == nil {
			cfg.Categories = cats
		} else {
			p.logger.Warn("ignoring unparsable category override",
				slog.String("run_id", run.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	if run.MaxBatchChars.Valid {
		cfg.MaxBatchChars = int(run.MaxBatchChars.Int32)
	}
	if run.RetryMaxAttempts.Valid {
		cfg.Retry.MaxAttempts = int(run.RetryMaxAttempts.Int32)
	}
	if run.RetryBackoffMs.Valid {
		cfg.Retry.Backoff = time.Duration(run.RetryBackoffMs.Int32) * time.Millisecond
	}
	if run.ContinueOnFailure.Valid {
		cfg.ContinueOnFailure = run.ContinueOnFailure.Bool
	}
	return cfg
}

func (p *Pipeline) fail(ctx context.Context, runID uuid.UUID, stageName string, cause error) {
	// The rework stage reports its own fatal event through the runner's
	// sink; every other stage failure is reported here.
	if stageName != StageRework {
		if err := p.events.Append(ctx, runID, rework.Event{
			Kind: rework.EventFatal,
			Err:  cause.Error(),
		}); err != nil {
			p.logger.Warn("fatal event relay failed",
				slog.String("run_id", runID.String()),
				slog.String("error", err.Error()))
		}
	}

	if err := p.store.FailReworkRun(ctx, runID, cause.Error()); err != nil {
		p.logger.Error("mark run failed",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()))
	}
}
