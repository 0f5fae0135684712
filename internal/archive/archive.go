package archive

import (
	"context"
	"errors"
	"time"

	"github.com/cadencehq/cadence/internal/domain"
)

// ErrSnapshotNotFound is returned when a snapshot id does not resolve.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// HabitRecord is the archived shape of a habit. Completion history is
// stored as sorted date-key arrays so snapshot documents are
// byte-stable and diffable.
type HabitRecord struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Frequency           string   `json:"frequency"`
	ScheduleSelector    []int    `json:"schedule_selector,omitempty"`
	Timezone            *string  `json:"timezone,omitempty"`
	CompletionDateKeys  []string `json:"completion_date_keys"`
	SkippedDateKeys     []string `json:"skipped_date_keys"`
	HabitType           string   `json:"habit_type"`
	GraceMissesPerWeek  int      `json:"grace_misses_per_week"`
	ContextTags         []string `json:"context_tags,omitempty"`
	TriggerAfterHabitID *string  `json:"trigger_after_habit_id,omitempty"`
	LastNotifiedLevel   int      `json:"last_notified_level"`

	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// TodoRecord is the archived shape of a todo.
type TodoRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ContextTags []string   `json:"context_tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Snapshot is a point-in-time export of one user's data.
type Snapshot struct {
	ID      string        `json:"id"`
	UserID  string        `json:"user_id"`
	TakenAt time.Time     `json:"taken_at"`
	Habits  []HabitRecord `json:"habits"`
	Todos   []TodoRecord  `json:"todos"`
}

// NewHabitRecord converts a habit aggregate to its archived shape.
func NewHabitRecord(h *domain.Habit) HabitRecord {
	return HabitRecord{
		ID:                  h.ID,
		Title:               h.Title,
		Frequency:           string(h.Frequency),
		ScheduleSelector:    h.ScheduleSelector,
		Timezone:            h.Timezone,
		CompletionDateKeys:  h.CompletionDateKeys.Keys(),
		SkippedDateKeys:     h.SkippedDateKeys.Keys(),
		HabitType:           string(h.HabitType),
		GraceMissesPerWeek:  h.GraceMissesPerWeek,
		ContextTags:         h.ContextTags,
		TriggerAfterHabitID: h.TriggerAfterHabitID,
		LastNotifiedLevel:   h.LastNotifiedLevel,
		CreatedAt:           h.CreatedAt,
		ArchivedAt:          h.ArchivedAt,
	}
}

// NewTodoRecord converts a todo aggregate to its archived shape.
func NewTodoRecord(t *domain.Todo) TodoRecord {
	return TodoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ScheduledAt: t.ScheduledAt,
		CompletedAt: t.CompletedAt,
		ContextTags: t.ContextTags,
		CreatedAt:   t.CreatedAt,
	}
}

// Store defines blob persistence for snapshots.
// Implementations can be file-based, cloud-storage based, etc.
type Store interface {
	// PutSnapshot writes a new snapshot document.
	// Snapshot IDs never repeat, so an existing document is an error.
	PutSnapshot(ctx context.Context, snap *Snapshot) error

	// GetSnapshot retrieves one snapshot by owner and id.
	// Returns ErrSnapshotNotFound if it doesn't exist.
	GetSnapshot(ctx context.Context, userID, id string) (*Snapshot, error)

	// ListSnapshots returns all snapshots owned by a user.
	ListSnapshots(ctx context.Context, userID string) ([]*Snapshot, error)
}
