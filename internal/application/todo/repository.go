package todo

import (
	"context"

	"github.com/cadencehq/cadence/internal/domain"
)

// Repository defines storage operations for todo management.
// All create/update operations return the entity as persisted, including version.
type Repository interface {
	// CreateTodo creates a new todo.
	// Returns the created todo with version populated by persistence layer.
	CreateTodo(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)

	// FindTodoByID retrieves a todo by its ID.
	// Returns domain.ErrTodoNotFound if the todo doesn't exist.
	FindTodoByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindTodosByUser retrieves every todo owned by a user. Filtering
	// and grouping happen in memory; a user's working set is small.
	FindTodosByUser(ctx context.Context, userID string) ([]*domain.Todo, error)

	// UpdateTodo persists the todo, guarded by its Version.
	// Returns the updated todo with new version.
	// Returns domain.ErrTodoNotFound if the todo doesn't exist.
	// Returns domain.ErrVersionConflict if the stored version moved on.
	UpdateTodo(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)

	// DeleteTodo removes a todo permanently.
	// Returns domain.ErrTodoNotFound if the todo doesn't exist.
	DeleteTodo(ctx context.Context, id string) error
}
