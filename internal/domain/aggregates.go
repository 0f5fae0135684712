package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateKeySet is a set of canonical YYYY-MM-DD date keys. Insertion order
// is irrelevant and duplicates are impossible by construction. It
// marshals as a sorted JSON array so snapshots are byte-stable.
type DateKeySet map[string]struct{}

// NewDateKeySet builds a set from the given keys.
func NewDateKeySet(keys ...string) DateKeySet {
	s := make(DateKeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s DateKeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key. Reports whether the set changed.
func (s DateKeySet) Add(key string) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Remove deletes key. Reports whether the set changed.
func (s DateKeySet) Remove(key string) bool {
	if _, ok := s[key]; !ok {
		return false
	}
	delete(s, key)
	return true
}

// Keys returns the members in ascending order.
func (s DateKeySet) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted array.
func (s DateKeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON reads the set from an array, dropping duplicates.
func (s *DateKeySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewDateKeySet(keys...)
	return nil
}

// Habit is an aggregate root representing a recurring obligation.
//
// The meaning of ScheduleSelector depends on Frequency:
//   - weekly: weekday indices 0 (Sunday) through 6 (Saturday)
//   - monthly, quarterly, half_yearly: a single day-of-month 1-31
//   - yearly: [month, dayOfMonth]
//
// The recurrence package converts this persisted triple into a typed
// rule; nothing outside persistence should index into the selector.
type Habit struct {
	ID     string
	UserID string
	Title  string

	// Recurrence configuration
	Frequency        Frequency
	ScheduleSelector []int
	Timezone         *string // IANA identifier; nil means the caller's local zone

	// Completion history. The two sets are disjoint: toggling one side
	// for a date key evicts the key from the other.
	CompletionDateKeys DateKeySet
	SkippedDateKeys    DateKeySet

	// Carried through unchanged by the analytics core.
	HabitType           HabitType
	GraceMissesPerWeek  int
	ContextTags         []string
	TriggerAfterHabitID *string // weak reference, resolved by lookup at use time

	// LastNotifiedLevel is the milestone level the user was last
	// congratulated for. The analytics core only compares against it;
	// persisting a raised level is the service's job.
	LastNotifiedLevel int

	// Timestamps. CreatedAt anchors interval-based frequencies
	// (quarterly, half_yearly). ArchivedAt is checked by callers, never
	// interpreted by the analytics core.
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time

	// Optimistic locking version for concurrent update protection
	Version int
}

// Etag returns the entity tag for this habit, used for optimistic
// concurrency control.
func (h *Habit) Etag() string {
	return fmt.Sprintf("%d", h.Version)
}

// Archived reports whether the habit has been archived.
func (h *Habit) Archived() bool {
	return h.ArchivedAt != nil
}

// MarkCompleted records a completion for the given date key, evicting
// any skip recorded for the same day. Reports whether the completion
// set changed.
func (h *Habit) MarkCompleted(dateKey string) bool {
	h.SkippedDateKeys.Remove(dateKey)
	return h.CompletionDateKeys.Add(dateKey)
}

// MarkSkipped records a skip for the given date key, evicting any
// completion recorded for the same day. Reports whether the skip set
// changed.
func (h *Habit) MarkSkipped(dateKey string) bool {
	h.CompletionDateKeys.Remove(dateKey)
	return h.SkippedDateKeys.Add(dateKey)
}

// ClearDay removes both completion and skip marks for the date key.
func (h *Habit) ClearDay(dateKey string) {
	h.CompletionDateKeys.Remove(dateKey)
	h.SkippedDateKeys.Remove(dateKey)
}

// Validate checks structural invariants that persistence relies on.
func (h *Habit) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("%w: habit id is empty", ErrInvalidID)
	}
	if _, err := NewTitle(h.Title); err != nil {
		return err
	}
	if _, err := NewFrequency(string(h.Frequency)); err != nil {
		return err
	}
	if err := ValidateTimezone(h.Timezone); err != nil {
		return err
	}
	for key := range h.SkippedDateKeys {
		if h.CompletionDateKeys.Has(key) {
			return fmt.Errorf("date key %s is both completed and skipped", key)
		}
	}
	return nil
}

// Todo is an aggregate root representing a single-occurrence obligation.
type Todo struct {
	ID     string
	UserID string
	Title  string

	Status   TodoStatus
	Priority Priority

	ScheduledAt *time.Time // nil means unscheduled
	CompletedAt *time.Time // non-nil iff Status == completed

	ContextTags []string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Optimistic locking version for concurrent update protection
	Version int
}

// Etag returns the entity tag for this todo.
func (t *Todo) Etag() string {
	return fmt.Sprintf("%d", t.Version)
}

// SetStatus transitions the todo to the given status at the given
// instant, maintaining the invariant that CompletedAt is non-nil
// exactly when the status is completed.
func (t *Todo) SetStatus(status TodoStatus, at time.Time) error {
	if _, err := NewTodoStatus(string(status)); err != nil {
		return err
	}
	t.Status = status
	if status == TodoStatusCompleted {
		completed := at
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
	return nil
}

// Validate checks the completion invariant and enum fields.
func (t *Todo) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: todo id is empty", ErrInvalidID)
	}
	if _, err := NewTitle(t.Title); err != nil {
		return err
	}
	if _, err := NewTodoStatus(string(t.Status)); err != nil {
		return err
	}
	if _, err := NewPriority(string(t.Priority)); err != nil {
		return err
	}
	if t.Status == TodoStatusCompleted && t.CompletedAt == nil {
		return fmt.Errorf("completed todo %s has no completion time", t.ID)
	}
	if t.Status != TodoStatusCompleted && t.CompletedAt != nil {
		return fmt.Errorf("todo %s has a completion time but status %s", t.ID, t.Status)
	}
	return nil
}
