package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Source types accepted by the sources table.
const (
	SourceTypeGitHub = "github"
	SourceTypeGit    = "git"
	SourceTypeUpload = "upload"
	SourceTypeS3     = "s3"
)

// Rework run lifecycle states.
const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

type Project struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description pgtype.Text `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Source struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	Type      string      `json:"type"`
	URI       string      `json:"uri"`
	ObjectKey pgtype.Text `json:"object_key"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type ReworkRun struct {
	ID               uuid.UUID   `json:"id"`
	ProjectID        uuid.UUID   `json:"project_id"`
	SourceID         pgtype.UUID `json:"source_id"`
	Status           string      `json:"status"`
	Review           pgtype.Text `json:"review"`
	ArchiveKey       pgtype.Text `json:"archive_key"`
	FileCount        int32       `json:"file_count"`
	FailedCategories []string    `json:"failed_categories"`
	Error            pgtype.Text `json:"error"`
	// Per-run overrides; invalid/nil means the service config applies.
	Categories        json.RawMessage    `json:"categories,omitempty"`
	MaxBatchChars     pgtype.Int4        `json:"max_batch_chars"`
	RetryMaxAttempts  pgtype.Int4        `json:"retry_max_attempts"`
	RetryBackoffMs    pgtype.Int4        `json:"retry_backoff_ms"`
	ContinueOnFailure pgtype.Bool        `json:"continue_on_failure"`
	CreatedAt         time.Time          `json:"created_at"`
	StartedAt         pgtype.Timestamptz `json:"started_at"`
	FinishedAt        pgtype.Timestamptz `json:"finished_at"`
}
