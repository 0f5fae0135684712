package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/cadence/internal/application/todo"
	"github.com/cadencehq/cadence/internal/civil"
	"github.com/cadencehq/cadence/internal/grouping"
	"github.com/cadencehq/cadence/internal/infrastructure/http/response"
)

type createTodoRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Priority    string     `json:"priority"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ContextTags []string   `json:"context_tags"`
}

// CreateTodo handles POST /v1/todos.
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.UserID == "" {
		response.ValidationError(w, "user_id", "required field missing")
		return
	}

	created, err := h.todoService.CreateTodo(r.Context(), todo.CreateParams{
		UserID:      req.UserID,
		Title:       req.Title,
		Priority:    req.Priority,
		ScheduledAt: req.ScheduledAt,
		ContextTags: req.ContextTags,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapTodo(created))
}

// GetTodo handles GET /v1/todos/{todo_id}.
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	found, err := h.todoService.GetTodo(r.Context(), chi.URLParam(r, "todo_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, mapTodo(found))
}

type updateTodoRequest struct {
	Title       *string   `json:"title"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	ContextTags *[]string `json:"context_tags"`

	ScheduledAt      *time.Time `json:"scheduled_at"`
	ClearScheduledAt bool       `json:"clear_scheduled_at"`
}

// UpdateTodo handles PATCH /v1/todos/{todo_id}. Status transitions go
// through the aggregate, so completing sets the completion timestamp
// and reopening clears it.
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	updated, err := h.todoService.UpdateTodo(r.Context(), todo.UpdateParams{
		ID:               chi.URLParam(r, "todo_id"),
		Etag:             r.Header.Get("If-Match"),
		Title:            req.Title,
		Status:           req.Status,
		Priority:         req.Priority,
		ContextTags:      req.ContextTags,
		ScheduledAt:      req.ScheduledAt,
		ClearScheduledAt: req.ClearScheduledAt,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTodo(updated))
}

// DeleteTodo handles DELETE /v1/todos/{todo_id}.
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.todoService.DeleteTodo(r.Context(), chi.URLParam(r, "todo_id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// GroupedView handles GET /v1/todos/grouped. Query parameters mirror
// the view controls: status, priority, date_preset (with day for the
// custom preset), tag, sort_by, sort_dir, plus at and timezone framing
// the calendar.
func (h *Handler) GroupedView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}
	at, ok := parseTimeParam(r, "at")
	if !ok {
		response.BadRequest(w, "invalid at timestamp, expected RFC 3339")
		return
	}

	preset, err := grouping.NewDatePreset(q.Get("date_preset"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	sortKey, err := grouping.NewSortKey(q.Get("sort_by"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	sortDir, err := grouping.NewSortDir(q.Get("sort_dir"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	params := grouping.Params{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Preset:   preset,
		Tag:      q.Get("tag"),
		SortKey:  sortKey,
		SortDir:  sortDir,
	}

	frameZone := q.Get("timezone")
	if day := q.Get("day"); day != "" {
		loc, err := civil.Zone(frameZone)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		customDay, err := civil.ParseDateKey(day, loc)
		if err != nil {
			response.BadRequest(w, "invalid day, expected YYYY-MM-DD")
			return
		}
		params.CustomDay = &customDay
	}

	sections, err := h.todoService.GroupedView(r.Context(), userID, params, at, frameZone)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"sections": mapSections(sections)})
}

// DueToday handles GET /v1/todos/due-today. The notifier uses the same
// service call for its reminder fan-out.
func (h *Handler) DueToday(w http.ResponseWriter, r *http.Request) {
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

	due, err := h.todoService.DueToday(r.Context(), userID, at, r.URL.Query().Get("timezone"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"todos": mapTodos(due)})
}

// TodoStreak handles GET /v1/todos/streak.
func (h *Handler) TodoStreak(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}
	at, ok := parseTimeParam(r, "as_of")
	if !ok {
		response.BadRequest(w, "invalid as_of timestamp, expected RFC 3339")
		return
	}

	streak, err := h.todoService.TodoStreak(r.Context(), userID, at, r.URL.Query().Get("timezone"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]int{"streak": streak})
}
