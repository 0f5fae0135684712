package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/grouping"
	"github.com/cadencehq/cadence/internal/insights"
)

// Default configuration values.
const DefaultStreakLookbackDays = 366

// Config holds configuration for the Service.
type Config struct {
	StreakLookbackDays int
}

// Service provides business logic for one-off todos: CRUD with
// optimistic locking, the grouped list view, and the completion streak.
type Service struct {
	repo   Repository
	config Config
}

// NewService creates a new todo service.
func NewService(repo Repository, config Config) *Service {
	if config.StreakLookbackDays <= 0 {
		config.StreakLookbackDays = DefaultStreakLookbackDays
	}
	return &Service{repo: repo, config: config}
}

// CreateParams carries the caller-supplied fields for a new todo.
type CreateParams struct {
	UserID      string
	Title       string
	Priority    string
	ScheduledAt *time.Time
	ContextTags []string
}

// CreateTodo validates the input and creates a new pending todo.
func (s *Service) CreateTodo(ctx context.Context, p CreateParams) (*domain.Todo, error) {
	title, err := domain.NewTitle(p.Title)
	if err != nil {
		return nil, err
	}
	priority, err := domain.NewPriority(p.Priority)
	if err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	todo := &domain.Todo{
		ID:          idObj.String(),
		UserID:      p.UserID,
		Title:       title.String(),
		Status:      domain.TodoStatusPending,
		Priority:    priority,
		ScheduledAt: p.ScheduledAt,
		ContextTags: p.ContextTags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.CreateTodo(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

// GetTodo retrieves a todo by ID.
func (s *Service) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	if id == "" {
		return nil, domain.ErrTodoNotFound
	}
	return s.repo.FindTodoByID(ctx, id)
}

// UpdateParams carries optional field updates; nil means "leave as is".
type UpdateParams struct {
	ID   string
	Etag string // optional optimistic lock; empty skips the check

	Title       *string
	Status      *string
	Priority    *string
	ContextTags *[]string

	ScheduledAt      *time.Time
	ClearScheduledAt bool
}

// UpdateTodo applies the non-nil fields of params and persists. Status
// transitions go through the aggregate so the completion timestamp
// invariant holds: it is set when a todo becomes completed and nulled
// on any transition away.
func (s *Service) UpdateTodo(ctx context.Context, p UpdateParams) (*domain.Todo, error) {
	todo, err := s.repo.FindTodoByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Etag != "" && p.Etag != todo.Etag() {
		return nil, domain.ErrVersionConflict
	}

	if p.Title != nil {
		title, err := domain.NewTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		todo.Title = title.String()
	}
	if p.Status != nil {
		status, err := domain.NewTodoStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		if err := todo.SetStatus(status, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	if p.Priority != nil {
		priority, err := domain.NewPriority(*p.Priority)
		if err != nil {
			return nil, err
		}
		todo.Priority = priority
	}
	if p.ContextTags != nil {
		todo.ContextTags = *p.ContextTags
	}
	switch {
	case p.ClearScheduledAt:
		todo.ScheduledAt = nil
	case p.ScheduledAt != nil:
		todo.ScheduledAt = p.ScheduledAt
	}

	todo.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.UpdateTodo(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

// DeleteTodo removes a todo permanently.
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTodoNotFound
	}
	return s.repo.DeleteTodo(ctx, id)
}

// GroupedView loads a user's todos and runs the grouping pipeline over
// them. The frame zone names the timezone "today" is judged in; empty
// means the server's local zone.
func (s *Service) GroupedView(ctx context.Context, userID string, params grouping.Params, now time.Time, frameZone string) ([]grouping.Section, error) {
	loc, err := civil.Zone(frameZone)
	if err != nil {
		return nil, err
	}
	todos, err := s.repo.FindTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	return grouping.Group(todos, params, now, loc), nil
}

// DueToday returns the user's pending todos scheduled inside today's
// civil day in the given frame zone.
func (s *Service) DueToday(ctx context.Context, userID string, now time.Time, frameZone string) ([]*domain.Todo, error) {
	loc, err := civil.Zone(frameZone)
	if err != nil {
		return nil, err
	}
	todos, err := s.repo.FindTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	return grouping.DueToday(todos, now, loc), nil
}

// TodoStreak counts consecutive civil days ending at asOf on which the
// user completed at least one todo.
func (s *Service) TodoStreak(ctx context.Context, userID string, asOf time.Time, frameZone string) (int, error) {
	loc, err := civil.Zone(frameZone)
	if err != nil {
		return 0, err
	}
	todos, err := s.repo.FindTodosByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load todos: %w", err)
	}

	var instants []time.Time
	for _, t := range todos {
		if t.Status == domain.TodoStatusCompleted && t.CompletedAt != nil {
			instants = append(instants, *t.CompletedAt)
		}
	}
	return insights.StreakFromInstants(instants, s.config.StreakLookbackDays, asOf, loc), nil
}
