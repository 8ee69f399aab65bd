package rework

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Generator produces raw model output for one prompt. Implementations live
// in internal/generation; tests substitute in-package fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RetryPolicy bounds generation attempts per batch. MaxAttempts counts all
// calls including the first; Backoff is the fixed wait between attempts
// (zero means retry immediately, which tests rely on).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is the production default: one retry after a short pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Backoff: time.Second}
}

// Config carries the knobs for one run.
type Config struct {
	// Categories in declaration order; empty means DefaultCategories.
	Categories []Category
	// MaxBatchChars is the per-batch content budget; <= 0 means
	// DefaultMaxBatchChars.
	MaxBatchChars int
	Retry         RetryPolicy
	// ContinueOnFailure skips a category whose batch exhausted its retries
	// instead of aborting the run. Off by default: a single exhausted batch
	// is fatal and the partial result set is discarded.
	ContinueOnFailure bool
}

// Runner executes the rework pipeline for one file set. It owns the
// accumulating file set for the duration of Run; a Runner may be reused for
// sequential runs but is not safe for concurrent use.
type Runner struct {
	gen    Generator
	cfg    Config
	sink   Sink
	logger *slog.Logger
}

// NewRunner validates the configuration and returns a runner. A nil sink
// drops events.
func NewRunner(gen Generator, cfg Config, sink Sink, logger *slog.Logger) (*Runner, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	if err := ValidateCategories(cfg.Categories); err != nil {
		return nil, err
	}
	if cfg.MaxBatchChars <= 0 {
		cfg.MaxBatchChars = DefaultMaxBatchChars
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{gen: gen, cfg: cfg, sink: sink, logger: logger}, nil
}

// Run drives categorize → batch → generate-with-retry → merge over the
// given files. Batches are processed strictly in order, one at a time;
// generation calls are never issued concurrently. The merged file set is
// returned on success. On a fatal failure the partial set is discarded and
// the terminal error returned.
func (r *Runner) Run(ctx context.Context, files []SourceFile, reviewContext string) (GeneratedFileSet, error) {
	if len(files) == 0 {
		r.emit(Event{Kind: EventFatal, Err: ErrNoFiles.Error()})
		return nil, ErrNoFiles
	}

	byCategory := Categorize(files, r.cfg.Categories)
	generated := make(GeneratedFileSet)
	failed := 0
	var lastErr error

	for _, cat := range r.cfg.Categories {
		catFiles := byCategory[cat.Name]
		if len(catFiles) == 0 {
			// Empty category: no batches, no events.
			continue
		}

		batches := MakeBatches(cat.Name, catFiles, r.cfg.MaxBatchChars)
		if err := r.runCategory(ctx, batches, reviewContext, generated); err != nil {
			if ctx.Err() != nil || !r.cfg.ContinueOnFailure {
				r.emit(Event{Kind: EventFatal, Category: cat.Name, Err: err.Error()})
				return nil, err
			}
			failed++
			lastErr = err
			r.logger.Warn("category failed, continuing",
				slog.String("category", cat.Name),
				slog.String("error", err.Error()))
			continue
		}

		r.emit(Event{Kind: EventCategoryDone, Category: cat.Name, BatchCount: len(batches)})
		r.logger.Info("category done",
			slog.String("category", cat.Name),
			slog.Int("batches", len(batches)))
	}

	if failed > 0 && len(generated) == 0 {
		// Continue-on-failure left nothing to deliver.
		r.emit(Event{Kind: EventFatal, Err: lastErr.Error()})
		return nil, lastErr
	}

	r.emit(Event{Kind: EventCompleted, FileCount: len(generated)})
	return generated, nil
}

func (r *Runner) runCategory(ctx context.Context, batches []Batch, reviewContext string, acc GeneratedFileSet) error {
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.emit(Event{
			Kind:       EventBatchStarted,
			Category:   batch.Category,
			BatchIndex: i + 1,
			BatchCount: len(batches),
			FileCount:  len(batch.Files),
		})

		out, err := r.runBatch(ctx, batch, i+1, len(batches), reviewContext)
		if err != nil {
			return err
		}

		// Last write wins on path collisions; batches are disjoint by
		// construction so this is defensive only.
		for path, content := range out {
			acc[path] = content
		}
	}
	return nil
}

func (r *Runner) runBatch(ctx context.Context, batch Batch, index, count int, reviewContext string) (GeneratedFileSet, error) {
	prompt := BuildPrompt(reviewContext, batch.Category, batch.Files)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.cfg.Retry.Backoff):
			}
		}

		raw, err := r.gen.Generate(ctx, prompt)
		if err == nil {
			var out GeneratedFileSet
			if out, err = ParseResponse(raw); err == nil {
				r.logger.Info("batch succeeded",
					slog.String("category", batch.Category),
					slog.Int("batch", index),
					slog.Int("files", len(batch.Files)),
					slog.Int("attempt", attempt))
				return out, nil
			}
		}

		lastErr = err
		r.emit(Event{
			Kind:       EventBatchFailed,
			Category:   batch.Category,
			BatchIndex: index,
			BatchCount: count,
			Attempt:    attempt,
			Err:        err.Error(),
		})
		r.logger.Warn("batch attempt failed",
			slog.String("category", batch.Category),
			slog.Int("batch", index),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}

	return nil, &GenerationError{
		Category:   batch.Category,
		BatchIndex: index,
		BatchCount: count,
		Attempts:   r.cfg.Retry.MaxAttempts,
		Err:        lastErr,
	}
}

func (r *Runner) emit(ev Event) {
	if r.sink != nil {
		r.sink(ev)
	}
}
