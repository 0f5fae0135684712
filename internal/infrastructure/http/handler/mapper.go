package handler

import (
	"net/http"
	"time"

	"github.com/cadencehq/cadence/internal/domain"
	"github.com/cadencehq/cadence/internal/grouping"
	"github.com/cadencehq/cadence/internal/notify"
)

// HabitDTO is the wire shape of a habit.
type HabitDTO struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	Title               string     `json:"title"`
	Frequency           string     `json:"frequency"`
	ScheduleSelector    []int      `json:"schedule_selector,omitempty"`
	Timezone            *string    `json:"timezone,omitempty"`
	CompletionDateKeys  []string   `json:"completion_date_keys"`
	SkippedDateKeys     []string   `json:"skipped_date_keys"`
	HabitType           string     `json:"habit_type"`
	GraceMissesPerWeek  int        `json:"grace_misses_per_week"`
	ContextTags         []string   `json:"context_tags,omitempty"`
	TriggerAfterHabitID *string    `json:"trigger_after_habit_id,omitempty"`
	LastNotifiedLevel   int        `json:"last_notified_level"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty"`
	Etag                string     `json:"etag"`
}

func mapHabit(h *domain.Habit) HabitDTO {
	return HabitDTO{
		ID:                  h.ID,
		UserID:              h.UserID,
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
		UpdatedAt:           h.UpdatedAt,
		ArchivedAt:          h.ArchivedAt,
		Etag:                h.Etag(),
	}
}

func mapHabits(habits []*domain.Habit) []HabitDTO {
	dtos := make([]HabitDTO, len(habits))
	for i, h := range habits {
		dtos[i] = mapHabit(h)
	}
	return dtos
}

// TodoDTO is the wire shape of a todo.
type TodoDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ContextTags []string   `json:"context_tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Etag        string     `json:"etag"`
}

func mapTodo(t *domain.Todo) TodoDTO {
	return TodoDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ScheduledAt: t.ScheduledAt,
		CompletedAt: t.CompletedAt,
		ContextTags: t.ContextTags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Etag:        t.Etag(),
	}
}

func mapTodos(todos []*domain.Todo) []TodoDTO {
	dtos := make([]TodoDTO, len(todos))
	for i, t := range todos {
		dtos[i] = mapTodo(t)
	}
	return dtos
}

// SectionDTO is one labeled bucket of the grouped view.
type SectionDTO struct {
	Title  string    `json:"title"`
	Rank   int       `json:"rank"`
	Anchor time.Time `json:"anchor"`
	Items  []TodoDTO `json:"items"`
}

func mapSections(sections []grouping.Section) []SectionDTO {
	dtos := make([]SectionDTO, len(sections))
	for i, s := range sections {
		dtos[i] = SectionDTO{
			Title:  s.Title,
			Rank:   s.Rank,
			Anchor: s.Anchor,
			Items:  mapTodos(s.Items),
		}
	}
	return dtos
}

// SubscriptionDTO is the wire shape of a push subscription.
type SubscriptionDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}

func mapSubscription(s *notify.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		Endpoint:  s.Endpoint,
		CreatedAt: s.CreatedAt,
	}
}

// parseTimeParam reads an RFC 3339 query parameter, defaulting to the
// current time when absent. The bool result reports a parse failure.
func parseTimeParam(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Now(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
