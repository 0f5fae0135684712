package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/cadence/internal/application/habit"
	"github.com/cadencehq/cadence/internal/infrastructure/http/response"
)

type createHabitRequest struct {
	UserID              string   `json:"user_id"`
	Title               string   `json:"title"`
	Frequency           string   `json:"frequency"`
	ScheduleSelector    []int    `json:"schedule_selector"`
	Timezone            *string  `json:"timezone"`
	HabitType           string   `json:"habit_type"`
	GraceMissesPerWeek  int      `json:"grace_misses_per_week"`
	ContextTags         []string `json:"context_tags"`
	TriggerAfterHabitID *string  `json:"trigger_after_habit_id"`
}

// CreateHabit handles POST /v1/habits.
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.UserID == "" {
		response.ValidationError(w, "user_id", "required field missing")
		return
	}

	created, err := h.habitService.CreateHabit(r.Context(), habit.CreateParams{
		UserID:              req.UserID,
		Title:               req.Title,
		Frequency:           req.Frequency,
		ScheduleSelector:    req.ScheduleSelector,
		Timezone:            req.Timezone,
		HabitType:           req.HabitType,
		GraceMissesPerWeek:  req.GraceMissesPerWeek,
		ContextTags:         req.ContextTags,
		TriggerAfterHabitID: req.TriggerAfterHabitID,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapHabit(created))
}

// GetHabit handles GET /v1/habits/{habit_id}.
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	found, err := h.habitService.GetHabit(r.Context(), chi.URLParam(r, "habit_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapHabit(found))
}

// ListHabits handles GET /v1/habits. Archived habits are excluded
// unless include_archived=true.
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}

	includeArchived := false
	if raw := r.URL.Query().Get("include_archived"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "invalid include_archived value")
			return
		}
		includeArchived = parsed
	}

	habits, err := h.habitService.ListHabits(r.Context(), userID, includeArchived)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"habits": mapHabits(habits)})
}

type updateHabitRequest struct {
	Title              *string   `json:"title"`
	Frequency          *string   `json:"frequency"`
	ScheduleSelector   *[]int    `json:"schedule_selector"`
	HabitType          *string   `json:"habit_type"`
	GraceMissesPerWeek *int      `json:"grace_misses_per_week"`
	ContextTags        *[]string `json:"context_tags"`

	Timezone      *string `json:"timezone"`
	ClearTimezone bool    `json:"clear_timezone"`

	TriggerAfterHabitID *string `json:"trigger_after_habit_id"`
	ClearTrigger        bool    `json:"clear_trigger"`
}

// UpdateHabit handles PATCH /v1/habits/{habit_id}. Absent fields are
// left untouched. An If-Match header carrying the habit's etag enables
// the optimistic concurrency check.
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req updateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	updated, err := h.habitService.UpdateHabit(r.Context(), habit.UpdateParams{
		ID:                  chi.URLParam(r, "habit_id"),
		Etag:                r.Header.Get("If-Match"),
		Title:               req.Title,
		Frequency:           req.Frequency,
		ScheduleSelector:    req.ScheduleSelector,
		HabitType:           req.HabitType,
		GraceMissesPerWeek:  req.GraceMissesPerWeek,
		ContextTags:         req.ContextTags,
		Timezone:            req.Timezone,
		ClearTimezone:       req.ClearTimezone,
		TriggerAfterHabitID: req.TriggerAfterHabitID,
		ClearTrigger:        req.ClearTrigger,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapHabit(updated))
}

// DeleteHabit handles DELETE /v1/habits/{habit_id}.
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.habitService.DeleteHabit(r.Context(), chi.URLParam(r, "habit_id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ArchiveHabit handles POST /v1/habits/{habit_id}/archive.
func (h *Handler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	archived, err := h.habitService.ArchiveHabit(r.Context(), chi.URLParam(r, "habit_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapHabit(archived))
}

type toggleRequest struct {
	DateKey string `json:"date_key"`
}

type toggleResponse struct {
	Habit  HabitDTO `json:"habit"`
	Toggle bool     `json:"toggled_on"`
}

// ToggleCompletion handles POST /v1/habits/{habit_id}/completions.
// Toggling a day on evicts the same key from the skipped set; toggling
// again clears it.
func (h *Handler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	toggled, on, err := h.habitService.ToggleCompletion(r.Context(), chi.URLParam(r, "habit_id"), req.DateKey)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, toggleResponse{Habit: mapHabit(toggled), Toggle: on})
}

// ToggleSkip handles POST /v1/habits/{habit_id}/skips.
func (h *Handler) ToggleSkip(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	toggled, on, err := h.habitService.ToggleSkip(r.Context(), chi.URLParam(r, "habit_id"), req.DateKey)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, toggleResponse{Habit: mapHabit(toggled), Toggle: on})
}

// HabitStats handles GET /v1/habits/{habit_id}/stats. The optional
// as_of parameter (RFC 3339) pins the evaluation instant.
func (h *Handler) HabitStats(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseTimeParam(r, "as_of")
	if !ok {
		response.BadRequest(w, "invalid as_of timestamp, expected RFC 3339")
		return
	}

	stats, err := h.habitService.Stats(r.Context(), chi.URLParam(r, "habit_id"), asOf)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, stats)
}

// Trends handles GET /v1/trends. The optional timezone parameter names
// the zone the chart frames are computed in.
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}
	at, ok := parseTimeParam(r, "at")
	if !ok {
		response.BadRequest(w, "invalid at timestamp, expected RFC 3339")
		return
	}

	trends, err := h.habitService.Trends(r.Context(), userID, at, r.URL.Query().Get("timezone"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, trends)
}

type triggerChainResponse struct {
	Next *HabitDTO `json:"next"`
}

// TriggerChain handles GET /v1/habits/{habit_id}/next. The response
// carries the habit triggered after this one, or null when the chain
// ends or the reference dangles.
func (h *Handler) TriggerChain(w http.ResponseWriter, r *http.Request) {
	next, err := h.habitService.TriggerChain(r.Context(), chi.URLParam(r, "habit_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	var resp triggerChainResponse
	if next != nil {
		dto := mapHabit(next)
		resp.Next = &dto
	}
	response.OK(w, resp)
}
