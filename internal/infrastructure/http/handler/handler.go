package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/cadence/internal/application/export"
	"github.com/cadencehq/cadence/internal/application/habit"
	"github.com/cadencehq/cadence/internal/application/todo"
	"github.com/cadencehq/cadence/internal/notify"
)

// Handler adapts HTTP requests to application service calls.
type Handler struct {
	habitService  *habit.Service
	todoService   *todo.Service
	exportService *export.Service
	subscriptions notify.SubscriptionRepository
}

// New creates an HTTP API handler over the application services.
func New(habitService *habit.Service, todoService *todo.Service, exportService *export.Service, subscriptions notify.SubscriptionRepository) *Handler {
	return &Handler{
		habitService:  habitService,
		todoService:   todoService,
		exportService: exportService,
		subscriptions: subscriptions,
	}
}

// Router builds the API route tree. The caller mounts it under the
// authenticated prefix.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Route("/habits", func(r chi.Router) {
			r.Post("/", h.CreateHabit)
			r.Get("/", h.ListHabits)

			r.Route("/{habit_id}", func(r chi.Router) {
				r.Get("/", h.GetHabit)
				r.Patch("/", h.UpdateHabit)
				r.Delete("/", h.DeleteHabit)
				r.Post("/archive", h.ArchiveHabit)
				r.Post("/completions", h.ToggleCompletion)
				r.Post("/skips", h.ToggleSkip)
				r.Get("/stats", h.HabitStats)
				r.Get("/next", h.TriggerChain)
			})
		})

		r.Get("/trends", h.Trends)

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", h.CreateTodo)
			r.Get("/grouped", h.GroupedView)
			r.Get("/due-today", h.DueToday)
			r.Get("/streak", h.TodoStreak)

			r.Route("/{todo_id}", func(r chi.Router) {
				r.Get("/", h.GetTodo)
				r.Patch("/", h.UpdateTodo)
				r.Delete("/", h.DeleteTodo)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", h.CreateSubscription)
			r.Get("/", h.ListSubscriptions)
			r.Delete("/{subscription_id}", h.DeleteSubscription)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", h.TakeSnapshot)
			r.Get("/", h.ListSnapshots)
			r.Get("/{snapshot_id}", h.GetSnapshot)
		})
	})

	return r
}
