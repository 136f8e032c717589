package handlers

import (
	"net/http"

	"timetracker/internal/api/middleware"
	"timetracker/internal/timetracker"

	"github.com/go-chi/chi/v5"
)

type startTimerRequest struct {
	Description string `json:"description"`
}

// StartTimer handles POST /api/v1/timer/start
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.StartTimer(r.Context(), middleware.ActorFromRequest(r), req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// StopTimer handles POST /api/v1/timer/{id}/stop
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	var req timetracker.StopInput
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.StopTimer(r.Context(), middleware.ActorFromRequest(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// DiscardTimer handles POST /api/v1/timer/{id}/discard
func (h *Handler) DiscardTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DiscardTimer(r.Context(), middleware.ActorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
