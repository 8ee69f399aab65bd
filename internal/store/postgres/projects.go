package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const projectColumns = `id, name, slug, description, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

type CreateProjectParams struct {
	Name        string
	Slug        string
	Description pgtype.Text
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO projects (name, slug, description)
		 VALUES ($1, $2, $3)
		 RETURNING `+projectColumns,
		arg.Name, arg.Slug, arg.Description)
	return scanProject(row)
}

func (q *Queries) GetProject(ctx context.Context, id uuid.UUID) (Project, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
	return scanProject(row)
}

type ListProjectsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (q *Queries) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM projects`).Scan(&n)
	return n, err
}

type UpdateProjectParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE projects
		 SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		arg.ID, arg.Name, arg.Description)
	return scanProject(row)
}

func (q *Queries) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
