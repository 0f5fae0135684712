package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cadencehq/cadence/internal/infrastructure/http/response"
	"github.com/cadencehq/cadence/internal/notify"
)

type createSubscriptionRequest struct {
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
}

// CreateSubscription handles POST /v1/subscriptions. Registering the
// same endpoint twice for a user is an upsert, not an error.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.UserID == "" {
		response.ValidationError(w, "user_id", "required field missing")
		return
	}
	if parsed, err := url.Parse(req.Endpoint); err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
		response.ValidationError(w, "endpoint", "must be an http(s) URL")
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	created, err := h.subscriptions.CreateSubscription(r.Context(), &notify.Subscription{
		ID:        id.String(),
		UserID:    req.UserID,
		Endpoint:  req.Endpoint,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapSubscription(created))
}

// ListSubscriptions handles GET /v1/subscriptions.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}

	subs, err := h.subscriptions.ListSubscriptionsByUser(r.Context(), userID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]SubscriptionDTO, len(subs))
	for i, s := range subs {
		dtos[i] = mapSubscription(s)
	}
	response.OK(w, map[string]any{"subscriptions": dtos})
}

// DeleteSubscription handles DELETE /v1/subscriptions/{subscription_id}.
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.DeleteSubscription(r.Context(), chi.URLParam(r, "subscription_id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}
