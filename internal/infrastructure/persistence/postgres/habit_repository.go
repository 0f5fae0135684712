package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cadencehq/cadence/internal/domain"
)

const habitColumns = `id, user_id, title, frequency, schedule_selector, timezone,
	completion_date_keys, skipped_date_keys, habit_type, grace_misses_per_week,
	context_tags, trigger_after_habit_id, last_notified_level,
	created_at, updated_at, archived_at, version`

// isForeignKeyViolation checks if an error is a PostgreSQL FK violation
// on the given constraint column.
func isForeignKeyViolation(err error, column string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503 is foreign_key_violation
		if pgErr.Code == "23503" {
			return pgErr.ConstraintName == "" || strings.Contains(pgErr.ConstraintName, column)
		}
	}
	return false
}

// CreateHabit inserts a habit and returns it as persisted.
func (s *Store) CreateHabit(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	completion, err := dateKeysToDB(h.CompletionDateKeys)
	if err != nil {
		return nil, err
	}
	skipped, err := dateKeysToDB(h.SkippedDateKeys)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO habits (
			id, user_id, title, frequency, schedule_selector, timezone,
			completion_date_keys, skipped_date_keys, habit_type, grace_misses_per_week,
			context_tags, trigger_after_habit_id, last_notified_level,
			created_at, updated_at, archived_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)
		RETURNING `+habitColumns,
		h.ID, h.UserID, h.Title, string(h.Frequency), selectorToDB(h.ScheduleSelector), h.Timezone,
		completion, skipped, string(h.HabitType), h.GraceMissesPerWeek,
		h.ContextTags, h.TriggerAfterHabitID, h.LastNotifiedLevel,
		h.CreatedAt, h.UpdatedAt, h.ArchivedAt)

	created, err := scanHabit(row)
	if err != nil {
		if isForeignKeyViolation(err, "trigger_after_habit_id") {
			return nil, fmt.Errorf("trigger habit does not exist: %w", domain.ErrHabitNotFound)
		}
		return nil, fmt.Errorf("failed to insert habit: %w", err)
	}
	return created, nil
}

// FindHabitByID retrieves a habit by its ID.
func (s *Store) FindHabitByID(ctx context.Context, id string) (*domain.Habit, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)

	h, err := scanHabit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrHabitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find habit: %w", err)
	}
	return h, nil
}

// FindHabitsByUser retrieves a user's habits, newest first.
func (s *Store) FindHabitsByUser(ctx context.Context, userID string, includeArchived bool) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}
	return habits, nil
}

// UpdateHabit persists the habit guarded by its version, bumping it on
// success. A missed guard is disambiguated with a follow-up lookup.
func (s *Store) UpdateHabit(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	completion, err := dateKeysToDB(h.CompletionDateKeys)
	if err != nil {
		return nil, err
	}
	skipped, err := dateKeysToDB(h.SkippedDateKeys)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE habits SET
			title = $3, frequency = $4, schedule_selector = $5, timezone = $6,
			completion_date_keys = $7, skipped_date_keys = $8, habit_type = $9,
			grace_misses_per_week = $10, context_tags = $11, trigger_after_habit_id = $12,
			last_notified_level = $13, updated_at = $14, archived_at = $15,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING `+habitColumns,
		h.ID, h.Version,
		h.Title, string(h.Frequency), selectorToDB(h.ScheduleSelector), h.Timezone,
		completion, skipped, string(h.HabitType),
		h.GraceMissesPerWeek, h.ContextTags, h.TriggerAfterHabitID,
		h.LastNotifiedLevel, h.UpdatedAt, h.ArchivedAt)

	updated, err := scanHabit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var version int
		lookupErr := s.pool.QueryRow(ctx, `SELECT version FROM habits WHERE id = $1`, h.ID).Scan(&version)
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up habit version: %w", lookupErr)
		}
		return nil, fmt.Errorf("%w: expected version %d, found %d", domain.ErrVersionConflict, h.Version, version)
	}
	if err != nil {
		if isForeignKeyViolation(err, "trigger_after_habit_id") {
			return nil, fmt.Errorf("trigger habit does not exist: %w", domain.ErrHabitNotFound)
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return updated, nil
}

// DeleteHabit removes a habit permanently.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func scanHabit(row pgx.Row) (*domain.Habit, error) {
	var (
		h          domain.Habit
		frequency  string
		selector   []int32
		completion []byte
		skipped    []byte
		habitType  string
		archivedAt *time.Time
	)
	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &frequency, &selector, &h.Timezone,
		&completion, &skipped, &habitType, &h.GraceMissesPerWeek,
		&h.ContextTags, &h.TriggerAfterHabitID, &h.LastNotifiedLevel,
		&h.CreatedAt, &h.UpdatedAt, &archivedAt, &h.Version)
	if err != nil {
		return nil, err
	}

	h.Frequency = domain.Frequency(frequency)
	h.ScheduleSelector = selectorFromDB(selector)
	h.HabitType = domain.HabitType(habitType)
	h.ArchivedAt = archivedAt
	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()
	if h.ArchivedAt != nil {
		utc := h.ArchivedAt.UTC()
		h.ArchivedAt = &utc
	}

	if h.CompletionDateKeys, err = dateKeysFromDB(completion); err != nil {
		return nil, err
	}
	if h.SkippedDateKeys, err = dateKeysFromDB(skipped); err != nil {
		return nil, err
	}
	return &h, nil
}
