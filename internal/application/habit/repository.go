package habit

import (
	"context"

	"github.com/cadencehq/cadence/internal/domain"
)

// Repository defines storage operations for habit management.
// All create/update operations return the entity as persisted, including version.
type Repository interface {
	// CreateHabit creates a new habit.
	// Returns the created habit with version populated by persistence layer.
	CreateHabit(ctx context.Context, habit *domain.Habit) (*domain.Habit, error)

	// FindHabitByID retrieves a habit by its ID.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist.
	FindHabitByID(ctx context.Context, id string) (*domain.Habit, error)

	// FindHabitsByUser retrieves all habits owned by a user, archived ones
	// included only when includeArchived is set.
	FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error)

	// UpdateHabit persists the habit, guarded by its Version.
	// Returns the updated habit with new version.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist.
	// Returns domain.ErrVersionConflict if the stored version moved on.
	UpdateHabit(ctx context.Context, habit *domain.Habit) (*domain.Habit, error)

	// DeleteHabit removes a habit permanently.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist.
	DeleteHabit(ctx context.Context, id string) error
}
