package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/internal/archive"
	"github.com/cadencehq/cadence/internal/domain"
)

// HabitSource supplies the habits included in a snapshot.
type HabitSource interface {
	FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error)
}

// TodoSource supplies the todos included in a snapshot.
type TodoSource interface {
	FindTodosByUser(ctx context.Context, userID string) ([]*domain.Todo, error)
}

// Service assembles point-in-time snapshots of a user's data and writes
// them to a blob store.
type Service struct {
	habits HabitSource
	todos  TodoSource
	store  archive.Store
}

// NewService creates a new export service.
func NewService(habits HabitSource, todos TodoSource, store archive.Store) *Service {
	return &Service{habits: habits, todos: todos, store: store}
}

// TakeSnapshot exports everything the user owns, archived habits
// included, and persists the document.
func (s *Service) TakeSnapshot(ctx context.Context, userID string) (*archive.Snapshot, error) {
	habits, err := s.habits.FindHabitsByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	todos, err := s.todos.FindTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	snap := &archive.Snapshot{
		ID:      idObj.String(),
		UserID:  userID,
		TakenAt: time.Now().UTC(),
		Habits:  make([]archive.HabitRecord, 0, len(habits)),
		Todos:   make([]archive.TodoRecord, 0, len(todos)),
	}
	for _, h := range habits {
		snap.Habits = append(snap.Habits, archive.NewHabitRecord(h))
	}
	for _, t := range todos {
		snap.Todos = append(snap.Todos, archive.NewTodoRecord(t))
	}

	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshot retrieves one stored snapshot.
func (s *Service) GetSnapshot(ctx context.Context, userID, id string) (*archive.Snapshot, error) {
	return s.store.GetSnapshot(ctx, userID, id)
}

// ListSnapshots returns the user's stored snapshots, newest first.
func (s *Service) ListSnapshots(ctx context.Context, userID string) ([]*archive.Snapshot, error) {
	snaps, err := s.store.ListSnapshots(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].TakenAt.After(snaps[j].TakenAt)
	})
	return snaps, nil
}
