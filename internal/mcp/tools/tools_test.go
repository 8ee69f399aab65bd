package tools

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// --- formatProjectLine ---

func TestFormatProjectLine_WithDescription(t *testing.T) {
	proj := postgres.Project{
		Name:        "Web App",
		Slug:        "web-app",
		Description: pgtype.Text{String: "customer portal", Valid: true},
	}
	line := formatProjectLine(proj)
	if !strings.Contains(line, "Web App") || !strings.Contains(line, "`web-app`") {
		t.Errorf("line should carry name and slug, got %q", line)
	}
	if !strings.Contains(line, "customer portal") {
		t.Errorf("line should carry the description, got %q", line)
	}
}

func TestFormatProjectLine_NoDescription(t *testing.T) {
	proj := postgres.Project{Name: "Bare", Slug: "bare"}
	line := formatProjectLine(proj)
	if strings.Contains(line, "—") {
		t.Errorf("line without description should have no separator, got %q", line)
	}
}

// --- formatRunSummary ---

func TestFormatRunSummary_CompletedRun(t *testing.T) {
	now := time.Now()
	run := postgres.ReworkRun{
		ID:               uuid.New(),
		Status:           postgres.RunStatusCompleted,
		FileCount:        12,
		FailedCategories: []string{"styling"},
		CreatedAt:        now,
		StartedAt:        pgtype.Timestamptz{Time: now, Valid: true},
		FinishedAt:       pgtype.Timestamptz{Time: now.Add(time.Minute), Valid: true},
	}

	s := formatRunSummary(run)
	if !strings.Contains(s, "completed") {
		t.Errorf("summary should carry status, got %q", s)
	}
	if !strings.Contains(s, "Files generated: 12") {
		t.Errorf("summary should carry file count, got %q", s)
	}
	if !strings.Contains(s, "Failed categories: styling") {
		t.Errorf("summary should carry failed categories, got %q", s)
	}
	if !strings.Contains(s, "Started:") || !strings.Contains(s, "Finished:") {
		t.Errorf("summary should carry timestamps, got %q", s)
	}
}

func TestFormatRunSummary_QueuedRun(t *testing.T) {
	run := postgres.ReworkRun{
		ID:        uuid.New(),
		Status:    postgres.RunStatusQueued,
		CreatedAt: time.Now(),
	}

	s := formatRunSummary(run)
	if strings.Contains(s, "Started:") || strings.Contains(s, "Finished:") {
		t.Errorf("queued run should have no start/finish lines, got %q", s)
	}
	if strings.Contains(s, "Files generated") {
		t.Errorf("queued run should not report generated files, got %q", s)
	}
}

func TestFormatRunSummary_FailedRun(t *testing.T) {
	run := postgres.ReworkRun{
		ID:        uuid.New(),
		Status:    postgres.RunStatusFailed,
		Error:     pgtype.Text{String: "stage review failed: boom", Valid: true},
		CreatedAt: time.Now(),
	}

	s := formatRunSummary(run)
	if !strings.Contains(s, "Error: stage review failed: boom") {
		t.Errorf("failed run should carry the error, got %q", s)
	}
	if strings.Contains(s, "Files generated") {
		t.Errorf("failed run should not report generated files, got %q", s)
	}
}

// --- formatEventLine ---

func TestFormatEventLine_AllKinds(t *testing.T) {
	tests := []struct {
		name string
		ev   pipeline.StoredEvent
		want []string
	}{
		{
			"batch started",
			pipeline.StoredEvent{Event: rework.Event{Kind: rework.EventBatchStarted, Category: "core", BatchIndex: 1, BatchCount: 3, FileCount: 5}},
			[]string{"batch_started", "core", "1/3", "5 files"},
		},
		{
			"batch failed",
			pipeline.StoredEvent{Event: rework.Event{Kind: rework.EventBatchFailed, Category: "core", BatchIndex: 2, BatchCount: 3, Attempt: 2, Err: "timeout"}},
			[]string{"batch_failed", "2/3", "attempt 2", "timeout"},
		},
		{
			"category done",
			pipeline.StoredEvent{Event: rework.Event{Kind: rework.EventCategoryDone, Category: "tests", BatchCount: 2}},
			[]string{"category_done", "tests", "2 batches"},
		},
		{
			"completed",
			pipeline.StoredEvent{Event: rework.Event{Kind: rework.EventCompleted, FileCount: 9}},
			[]string{"completed", "9 files"},
		},
		{
			"fatal",
			pipeline.StoredEvent{Event: rework.Event{Kind: rework.EventFatal, Err: "no files"}},
			[]string{"fatal", "no files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := formatEventLine(tt.ev)
			for _, want := range tt.want {
				if !strings.Contains(line, want) {
					t.Errorf("line %q should contain %q", line, want)
				}
			}
		})
	}
}
