package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const sourceColumns = `id, project_id, type, uri, object_key, created_at, updated_at`

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var s Source
	err := row.Scan(&s.ID, &s.ProjectID, &s.Type, &s.URI, &s.ObjectKey, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

type CreateSourceParams struct {
	ProjectID uuid.UUID
	Type      string
	URI       string
	ObjectKey pgtype.Text
}

func (q *Queries) CreateSource(ctx context.Context, arg CreateSourceParams) (Source, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO sources (project_id, type, uri, object_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+sourceColumns,
		arg.ProjectID, arg.Type, arg.URI, arg.ObjectKey)
	return scanSource(row)
}

func (q *Queries) GetSource(ctx context.Context, id uuid.UUID) (Source, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id)
	return scanSource(row)
}

func (q *Queries) ListSourcesByProject(ctx context.Context, projectID uuid.UUID) ([]Source, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+sourceColumns+`
		 FROM sources
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// GetLatestSourceByProject returns the most recently registered source.
// Runs triggered without an explicit source use it.
func (q *Queries) GetLatestSourceByProject(ctx context.Context, projectID uuid.UUID) (Source, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+sourceColumns+`
		 FROM sources
		 WHERE project_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		projectID)
	return scanSource(row)
}

func (q *Queries) DeleteSource(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	return err
}
