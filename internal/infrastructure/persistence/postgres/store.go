package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cadencehq/cadence/internal/application/habit"
	"github.com/cadencehq/cadence/internal/application/todo"
	"github.com/cadencehq/cadence/internal/notify"
)

// Store provides the PostgreSQL implementation of all repository
// interfaces. Queries are hand-written pgx SQL; converter helpers
// translate between database rows and domain aggregates.
//
// This store implements:
// - application/habit.Repository
// - application/todo.Repository
// - notify.SubscriptionRepository
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ habit.Repository              = (*Store)(nil)
	_ todo.Repository               = (*Store)(nil)
	_ notify.SubscriptionRepository = (*Store)(nil)
)

// NewStore creates a new PostgreSQL store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
// This is useful for transaction management and raw queries.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
