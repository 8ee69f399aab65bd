package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const runColumns = `id, project_id, source_id, status, review, archive_key, file_count,
	failed_categories, error, categories, max_batch_chars, retry_max_attempts,
	retry_backoff_ms, continue_on_failure, created_at, started_at, finished_at`

func scanRun(row interface{ Scan(...any) error }) (ReworkRun, error) {
	var r ReworkRun
	err := row.Scan(
		&r.ID, &r.ProjectID, &r.SourceID, &r.Status, &r.Review, &r.ArchiveKey,
		&r.FileCount, &r.FailedCategories, &r.Error, &r.Categories,
		&r.MaxBatchChars, &r.RetryMaxAttempts, &r.RetryBackoffMs,
		&r.ContinueOnFailure, &r.CreatedAt, &r.StartedAt, &r.FinishedAt,
	)
	return r, err
}

type CreateReworkRunParams struct {
	ProjectID         uuid.UUID
	SourceID          pgtype.UUID
	Categories        json.RawMessage
	MaxBatchChars     pgtype.Int4
	RetryMaxAttempts  pgtype.Int4
	RetryBackoffMs    pgtype.Int4
	ContinueOnFailure pgtype.Bool
}

func (q *Queries) CreateReworkRun(ctx context.Context, arg CreateReworkRunParams) (ReworkRun, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO rework_runs (project_id, source_id, categories, max_batch_chars,
		                          retry_max_attempts, retry_backoff_ms, continue_on_failure)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+runColumns,
		arg.ProjectID, arg.SourceID, arg.Categories, arg.MaxBatchChars,
		arg.RetryMaxAttempts, arg.RetryBackoffMs, arg.ContinueOnFailure)
	return scanRun(row)
}

func (q *Queries) GetReworkRun(ctx context.Context, id uuid.UUID) (ReworkRun, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM rework_runs WHERE id = $1`, id)
	return scanRun(row)
}

type ListReworkRunsByProjectParams struct {
	Slug   string
	Limit  int32
	Offset int32
}

func (q *Queries) ListReworkRunsByProject(ctx context.Context, arg ListReworkRunsByProjectParams) ([]ReworkRun, error) {
	rows, err := q.db.Query(ctx,
		`SELECT r.id, r.project_id, r.source_id, r.status, r.review, r.archive_key,
		        r.file_count, r.failed_categories, r.error, r.categories,
		        r.max_batch_chars, r.retry_max_attempts, r.retry_backoff_ms,
		        r.continue_on_failure, r.created_at, r.started_at, r.finished_at
		 FROM rework_runs r
		 JOIN projects p ON p.id = r.project_id
		 WHERE p.slug = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2 OFFSET $3`,
		arg.Slug, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReworkRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// MarkReworkRunRunning transitions queued -> running. The status guard keeps
// a janitor-requeued duplicate from clobbering an in-flight run.
func (q *Queries) MarkReworkRunRunning(ctx context.Context, id uuid.UUID) (ReworkRun, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE rework_runs
		 SET status = 'running', started_at = now()
		 WHERE id = $1 AND status = 'queued'
		 RETURNING `+runColumns,
		id)
	return scanRun(row)
}

func (q *Queries) SetReworkRunReview(ctx context.Context, id uuid.UUID, review string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE rework_runs SET review = $2 WHERE id = $1`,
		id, review)
	return err
}

type CompleteReworkRunParams struct {
	ID               uuid.UUID
	ArchiveKey       string
	FileCount        int32
	FailedCategories []string
}

func (q *Queries) CompleteReworkRun(ctx context.Context, arg CompleteReworkRunParams) (ReworkRun, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE rework_runs
		 SET status = 'completed', archive_key = $2, file_count = $3,
		     failed_categories = $4, finished_at = now()
		 WHERE id = $1
		 RETURNING `+runColumns,
		arg.ID, arg.ArchiveKey, arg.FileCount, arg.FailedCategories)
	return scanRun(row)
}

func (q *Queries) FailReworkRun(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE rework_runs
		 SET status = 'failed', error = $2, finished_at = now()
		 WHERE id = $1 AND status IN ('queued', 'running')`,
		id, errMsg)
	return err
}

// ListStuckQueuedRuns returns runs still queued after the cutoff; the
// scheduler re-enqueues them.
func (q *Queries) ListStuckQueuedRuns(ctx context.Context, olderThan time.Time) ([]ReworkRun, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+runColumns+`
		 FROM rework_runs
		 WHERE status = 'queued' AND created_at < $1
		 ORDER BY created_at`,
		olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReworkRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// FailStuckRunningRuns marks runs as failed that have been running past the
// cutoff, which usually means a worker died mid-run. Returns the number of
// runs failed.
func (q *Queries) FailStuckRunningRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE rework_runs
		 SET status = 'failed', error = 'worker timed out', finished_at = now()
		 WHERE status = 'running' AND started_at < $1`,
		olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
