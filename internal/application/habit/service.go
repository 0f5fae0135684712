package habit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/insights"
)

// Default configuration values.
const (
	DefaultStreakLookbackDays = 366

	weeklyWindowDays  = 7
	monthlyWindowDays = 30
)

// Config holds configuration for the Service.
type Config struct {
	// StreakLookbackDays caps how far back a streak walk goes.
	StreakLookbackDays int
}

// Service provides business logic for habit management and analytics.
// It orchestrates operations using the Repository interface; all date
// math is delegated to the civil/recurrence/insights packages.
type Service struct {
	repo   Repository
	config Config
}

// NewService creates a new habit service.
// Applies application defaults for zero or invalid config values.
func NewService(repo Repository, config Config) *Service {
	if config.StreakLookbackDays <= 0 {
		config.StreakLookbackDays = DefaultStreakLookbackDays
	}
	return &Service{repo: repo, config: config}
}

// CreateParams carries the caller-supplied fields for a new habit.
type CreateParams struct {
	UserID              string
	Title               string
	Frequency           string
	ScheduleSelector    []int
	Timezone            *string
	HabitType           string
	GraceMissesPerWeek  int
	ContextTags         []string
	TriggerAfterHabitID *string
}

// CreateHabit validates the input and creates a new habit. This is the
// create-time timezone checkpoint: a habit with a timezone that does
// not resolve against the IANA database is never persisted, so the
// analytics paths can treat stored zones as trustworthy.
func (s *Service) CreateHabit(ctx context.Context, p CreateParams) (*domain.Habit, error) {
	title, err := domain.NewTitle(p.Title)
	if err != nil {
		return nil, err
	}
	frequency, err := domain.NewFrequency(p.Frequency)
	if err != nil {
		return nil, err
	}
	habitType, err := domain.NewHabitType(p.HabitType)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTimezone(p.Timezone); err != nil {
		return nil, err
	}
	if p.GraceMissesPerWeek < 0 {
		return nil, fmt.Errorf("grace misses per week must not be negative: %d", p.GraceMissesPerWeek)
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	habit := &domain.Habit{
		ID:                  idObj.String(),
		UserID:              p.UserID,
		Title:               title.String(),
		Frequency:           frequency,
		ScheduleSelector:    p.ScheduleSelector,
		Timezone:            p.Timezone,
		CompletionDateKeys:  domain.NewDateKeySet(),
		SkippedDateKeys:     domain.NewDateKeySet(),
		HabitType:           habitType,
		GraceMissesPerWeek:  p.GraceMissesPerWeek,
		ContextTags:         p.ContextTags,
		TriggerAfterHabitID: p.TriggerAfterHabitID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.repo.CreateHabit(ctx, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return created, nil
}

// GetHabit retrieves a habit by ID.
func (s *Service) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	if id == "" {
		return nil, domain.ErrHabitNotFound
	}
	return s.repo.FindHabitByID(ctx, id)
}

// ListHabits retrieves the habits owned by a user.
func (s *Service) ListHabits(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	habits, err := s.repo.FindHabitsByUser(ctx, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// UpdateParams carries optional field updates; nil means "leave as is".
type UpdateParams struct {
	ID   string
	Etag string // optional optimistic lock; empty skips the check

	Title              *string
	Frequency          *string
	ScheduleSelector   *[]int
	HabitType          *string
	GraceMissesPerWeek *int
	ContextTags        *[]string

	// Timezone and the trigger reference are nullable fields, so each
	// gets an explicit clear flag alongside the set-pointer.
	Timezone      *string
	ClearTimezone bool

	TriggerAfterHabitID *string
	ClearTrigger        bool
}

// UpdateHabit applies the non-nil fields of params and persists.
func (s *Service) UpdateHabit(ctx context.Context, p UpdateParams) (*domain.Habit, error) {
	habit, err := s.repo.FindHabitByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.Etag != "" && p.Etag != habit.Etag() {
		return nil, domain.ErrVersionConflict
	}

	if p.Title != nil {
		title, err := domain.NewTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		habit.Title = title.String()
	}
	if p.Frequency != nil {
		frequency, err := domain.NewFrequency(*p.Frequency)
		if err != nil {
			return nil, err
		}
		habit.Frequency = frequency
	}
	if p.ScheduleSelector != nil {
		habit.ScheduleSelector = *p.ScheduleSelector
	}
	if p.HabitType != nil {
		habitType, err := domain.NewHabitType(*p.HabitType)
		if err != nil {
			return nil, err
		}
		habit.HabitType = habitType
	}
	if p.GraceMissesPerWeek != nil {
		if *p.GraceMissesPerWeek < 0 {
			return nil, fmt.Errorf("grace misses per week must not be negative: %d", *p.GraceMissesPerWeek)
		}
		habit.GraceMissesPerWeek = *p.GraceMissesPerWeek
	}
	if p.ContextTags != nil {
		habit.ContextTags = *p.ContextTags
	}
	switch {
	case p.ClearTimezone:
		habit.Timezone = nil
	case p.Timezone != nil:
		if err := domain.ValidateTimezone(p.Timezone); err != nil {
			return nil, err
		}
		habit.Timezone = p.Timezone
	}
	switch {
	case p.ClearTrigger:
		habit.TriggerAfterHabitID = nil
	case p.TriggerAfterHabitID != nil:
		habit.TriggerAfterHabitID = p.TriggerAfterHabitID
	}

	habit.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.UpdateHabit(ctx, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return updated, nil
}

// ArchiveHabit soft-deletes a habit. Archived habits keep their history
// and stay readable but drop out of default listings and trend frames.
func (s *Service) ArchiveHabit(ctx context.Context, id string) (*domain.Habit, error) {
	habit, err := s.repo.FindHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.Archived() {
		return habit, nil
	}
	now := time.Now().UTC()
	habit.ArchivedAt = &now
	habit.UpdatedAt = now

	updated, err := s.repo.UpdateHabit(ctx, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to archive habit: %w", err)
	}
	return updated, nil
}

// DeleteHabit removes a habit permanently.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrHabitNotFound
	}
	return s.repo.DeleteHabit(ctx, id)
}

// ToggleCompletion flips the completion mark for one civil day. A day
// already completed becomes unmarked; any skip recorded for that day is
// evicted. Returns the persisted habit and whether the day ended up
// completed.
func (s *Service) ToggleCompletion(ctx context.Context, habitID, dateKey string) (*domain.Habit, bool, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, false, err
	}
	habit, err := s.repo.FindHabitByID(ctx, habitID)
	if err != nil {
		return nil, false, err
	}

	completed := !habit.CompletionDateKeys.Has(dateKey)
	if completed {
		habit.MarkCompleted(dateKey)
	} else {
		habit.ClearDay(dateKey)
	}
	habit.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.UpdateHabit(ctx, habit)
	if err != nil {
		return nil, false, fmt.Errorf("failed to toggle completion: %w", err)
	}
	return updated, completed, nil
}

// ToggleSkip flips the skip mark for one civil day, evicting any
// completion recorded for that day. Returns the persisted habit and
// whether the day ended up skipped.
func (s *Service) ToggleSkip(ctx context.Context, habitID, dateKey string) (*domain.Habit, bool, error) {
	if err := validateDateKey(dateKey); err != nil {
		return nil, false, err
	}
	habit, err := s.repo.FindHabitByID(ctx, habitID)
	if err != nil {
		return nil, false, err
	}

	skipped := !habit.SkippedDateKeys.Has(dateKey)
	if skipped {
		habit.MarkSkipped(dateKey)
	} else {
		habit.ClearDay(dateKey)
	}
	habit.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.UpdateHabit(ctx, habit)
	if err != nil {
		return nil, false, fmt.Errorf("failed to toggle skip: %w", err)
	}
	return updated, skipped, nil
}

// Stats is the per-habit analytics bundle.
type Stats struct {
	Streak    int                  `json:"streak"`
	Weekly    insights.Consistency `json:"weeklyConsistency"`
	Monthly   insights.Consistency `json:"monthlyConsistency"`
	Milestone insights.Progress    `json:"milestone"`
	LeveledUp bool                 `json:"leveledUp"`
}

// Stats computes the analytics bundle for one habit as of the given
// instant. When the total completion count crosses a milestone the user
// has not been congratulated for yet, LeveledUp is set and the raised
// level is persisted so the flag fires once per milestone.
func (s *Service) Stats(ctx context.Context, habitID string, asOf time.Time) (*Stats, error) {
	habit, err := s.repo.FindHabitByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	streak, err := insights.HabitStreak(habit, s.config.StreakLookbackDays, asOf)
	if err != nil {
		return nil, err
	}
	weekly, err := insights.RollingConsistency(habit, weeklyWindowDays, asOf)
	if err != nil {
		return nil, err
	}
	monthly, err := insights.RollingConsistency(habit, monthlyWindowDays, asOf)
	if err != nil {
		return nil, err
	}

	total := len(habit.CompletionDateKeys)
	milestone := insights.MilestoneFor(total)
	leveled := insights.LeveledUp(total, habit.LastNotifiedLevel)

	if leveled {
		habit.LastNotifiedLevel = milestone.Level
		habit.UpdatedAt = time.Now().UTC()
		if _, err := s.repo.UpdateHabit(ctx, habit); err != nil {
			return nil, fmt.Errorf("failed to record milestone level: %w", err)
		}
	}

	return &Stats{
		Streak:    streak,
		Weekly:    weekly,
		Monthly:   monthly,
		Milestone: milestone,
		LeveledUp: leveled,
	}, nil
}

// Trends is the cross-habit time-series bundle.
type Trends struct {
	Weekly  []insights.Point `json:"weekly"`
	Monthly []insights.Point `json:"monthly"`
	Yearly  []insights.Point `json:"yearly"`
}

// Trends aggregates completion series over a user's active habits. The
// frame zone names the timezone the chart axis is rendered in; empty
// means the server's local zone.
func (s *Service) Trends(ctx context.Context, userID string, ref time.Time, frameZone string) (*Trends, error) {
	loc, err := civil.Zone(frameZone)
	if err != nil {
		return nil, err
	}
	habits, err := s.repo.FindHabitsByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	weekly, err := insights.WeeklySeries(habits, ref, loc)
	if err != nil {
		return nil, err
	}
	monthly, err := insights.MonthlySeries(habits, ref, loc)
	if err != nil {
		return nil, err
	}
	yearly, err := insights.YearlySeries(habits, ref, loc)
	if err != nil {
		return nil, err
	}

	return &Trends{Weekly: weekly, Monthly: monthly, Yearly: yearly}, nil
}

// TriggerChain resolves the habit this one is chained after. The
// reference is weak: a missing or dangling target yields (nil, nil),
// never an error, so stale chains degrade silently.
func (s *Service) TriggerChain(ctx context.Context, habitID string) (*domain.Habit, error) {
	habit, err := s.repo.FindHabitByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.TriggerAfterHabitID == nil || *habit.TriggerAfterHabitID == "" {
		return nil, nil
	}
	target, err := s.repo.FindHabitByID(ctx, *habit.TriggerAfterHabitID)
	if errors.Is(err, domain.ErrHabitNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

func validateDateKey(key string) error {
	if _, err := civil.ParseDateKey(key, time.UTC); err != nil {
		return fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return nil
}
