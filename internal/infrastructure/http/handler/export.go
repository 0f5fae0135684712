package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/cadence/internal/archive"
	"github.com/cadencehq/cadence/internal/infrastructure/http/response"
)

type takeSnapshotRequest struct {
	UserID string `json:"user_id"`
}

// TakeSnapshot handles POST /v1/snapshots. The snapshot captures every
// habit (archived included) and todo the user has at that instant.
func (h *Handler) TakeSnapshot(w http.ResponseWriter, r *http.Request) {
	var req takeSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.UserID == "" {
		response.ValidationError(w, "user_id", "required field missing")
		return
	}

	snapshot, err := h.exportService.TakeSnapshot(r.Context(), req.UserID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, snapshot)
}

// GetSnapshot handles GET /v1/snapshots/{snapshot_id}.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}

	snapshot, err := h.exportService.GetSnapshot(r.Context(), userID, chi.URLParam(r, "snapshot_id"))
	if err != nil {
		if errors.Is(err, archive.ErrSnapshotNotFound) {
			response.NotFound(w, "snapshot")
			return
		}
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, snapshot)
}

// ListSnapshots handles GET /v1/snapshots, newest first.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.ValidationError(w, "user_id", "required query parameter missing")
		return
	}

	snapshots, err := h.exportService.ListSnapshots(r.Context(), userID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"snapshots": snapshots})
}
