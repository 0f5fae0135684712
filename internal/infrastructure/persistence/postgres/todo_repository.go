package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cadencehq/cadence/internal/domain"
)

const todoColumns = `id, user_id, title, status, priority, scheduled_at, completed_at,
	context_tags, created_at, updated_at, version`

// CreateTodo inserts a todo and returns it as persisted.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO todos (
			id, user_id, title, status, priority, scheduled_at, completed_at,
			context_tags, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		RETURNING `+todoColumns,
		t.ID, t.UserID, t.Title, string(t.Status), string(t.Priority), t.ScheduledAt, t.CompletedAt,
		t.ContextTags, t.CreatedAt, t.UpdatedAt)

	created, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return created, nil
}

// FindTodoByID retrieves a todo by its ID.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)

	t, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return t, nil
}

// FindTodosByUser retrieves every todo owned by a user.
func (s *Store) FindTodosByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []*domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}
	return todos, nil
}

// UpdateTodo persists the todo guarded by its version, bumping it on
// success.
func (s *Store) UpdateTodo(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE todos SET
			title = $3, status = $4, priority = $5, scheduled_at = $6,
			completed_at = $7, context_tags = $8, updated_at = $9,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING `+todoColumns,
		t.ID, t.Version,
		t.Title, string(t.Status), string(t.Priority), t.ScheduledAt,
		t.CompletedAt, t.ContextTags, t.UpdatedAt)

	updated, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var version int
		lookupErr := s.pool.QueryRow(ctx, `SELECT version FROM todos WHERE id = $1`, t.ID).Scan(&version)
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up todo version: %w", lookupErr)
		}
		return nil, fmt.Errorf("%w: expected version %d, found %d", domain.ErrVersionConflict, t.Version, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

// DeleteTodo removes a todo permanently.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		t        domain.Todo
		status   string
		priority string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &status, &priority, &t.ScheduledAt, &t.CompletedAt,
		&t.ContextTags, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TodoStatus(status)
	t.Priority = domain.Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	t.ScheduledAt = toUTCPtr(t.ScheduledAt)
	t.CompletedAt = toUTCPtr(t.CompletedAt)
	return &t, nil
}

func toUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
