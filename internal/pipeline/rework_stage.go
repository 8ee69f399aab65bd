package pipeline

import (
	"context"
	"log/slog"

	"github.com/reforge-labs/reforge/internal/rework"
)

// ReworkStage drives the batch generation pipeline over the selected files,
// relaying runner events to the run's progress stream.
type ReworkStage struct {
	gen    rework.Generator
	events *EventLog
	logger *slog.Logger
}

func NewReworkStage(gen rework.Generator, events *EventLog, logger *slog.Logger) *ReworkStage {
	return &ReworkStage{gen: gen, events: events, logger: logger}
}

func (s *ReworkStage) Name() string { return StageRework }

func (s *ReworkStage) Execute(ctx context.Context, rc *RunContext) error {
	// The runner is single-threaded and invokes the sink synchronously, so
	// the tracker needs no locking.
	tracker := newCategoryTracker()
	relay := s.events.Sink(ctx, rc.RunID)
	sink := func(ev rework.Event) {
		tracker.observe(ev)
		relay(ev)
	}

	runner, err := rework.NewRunner(s.gen, rc.Rework, sink, s.logger)
	if err != nil {
		// Construction failures bypass the runner's own fatal reporting.
		relay(rework.Event{Kind: rework.EventFatal, Err: err.Error()})
		return err
	}

	generated, err := runner.Run(ctx, rc.Files, rc.Review)
	if err != nil {
		return err
	}

	rc.Generated = generated
	rc.FailedCategories = tracker.failed(rc.Rework.Categories)
	return nil
}

// categoryTracker derives which categories failed from the event flow: a
// category that started batches but never reported done was skipped by the
// continue-on-failure policy.
type categoryTracker struct {
	started map[string]bool
	done    map[string]bool
}

func newCategoryTracker() *categoryTracker {
	return &categoryTracker{started: make(map[string]bool), done: make(map[string]bool)}
}

func (t *categoryTracker) observe(ev rework.Event) {
	switch ev.Kind {
	case rework.EventBatchStarted:
		t.started[ev.Category] = true
	case rework.EventCategoryDone:
		t.done[ev.Category] = true
	}
}

// failed returns the started-but-not-done category names in declaration
// order. Nil when every started category finished.
func (t *categoryTracker) failed(categories []rework.Category) []string {
	var out []string
	for _, c := range categories {
		if t.started[c.Name] && !t.done[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}
