package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/source"
)

// Stage names in execution order.
const (
	StageFetch   = "fetch"
	StageSelect  = "select"
	StageReview  = "review"
	StageRework  = "rework"
	StageArchive = "archive"
)

// Stage represents a step in the rework pipeline.
type Stage interface {
	Name() string
	Execute(ctx context.Context, rc *RunContext) error
}

// RunContext carries state through the pipeline stages.
type RunContext struct {
	RunID     uuid.UUID
	ProjectID uuid.UUID
	SourceID  uuid.UUID
	Trigger   string

	// Resolved from service config and the run row's overrides before any
	// stage executes.
	Rework rework.Config

	// Set by fetch stage
	SourceType string
	// WorkDir holds a local checkout for git/upload/s3 sources; empty for
	// github sources, which are read through the API instead.
	WorkDir string
	Ref     *source.RepoRef
	Entries []source.TreeEntry

	// Set by select stage
	Files []rework.SourceFile

	// Set by review stage
	Review string

	// Set by rework stage
	Generated        rework.GeneratedFileSet
	FailedCategories []string

	// Set by archive stage
	ArchiveKey string
}
