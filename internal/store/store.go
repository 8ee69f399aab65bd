// Package store bundles the Postgres query layer behind the one handle the
// API, worker and scheduler all share.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reforge-labs/reforge/internal/store/postgres"
)

// Store embeds the query set and keeps the pool for transactions and
// readiness pings.
type Store struct {
	*postgres.Queries
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: postgres.New(pool),
		pool:    pool,
	}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// WithTx runs fn inside a transaction. Returning an error rolls back;
// anything fn wrote is gone.
func (s *Store) WithTx(ctx context.Context, fn func(*postgres.Queries) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.Queries.WithTx(tx))
	})
}
