package handlers

import (
	"context"
	"net/http"

	"timetracker/internal/api/middleware"
	"timetracker/internal/storage/models"
	"timetracker/internal/timetracker"

	"github.com/go-chi/chi/v5"
)

// ListEntries handles GET /api/v1/entries?state=active|past|deleted&project=
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var state models.EntryState
	switch q.Get("state") {
	case "active":
		state = models.StateRunning
	case "", "past":
		state = models.StateClosed
	case "deleted":
		state = models.StateDeleted
	default:
		writeErrorWithRequestID(w, r, http.StatusBadRequest, "state must be active, past or deleted")
		return
	}

	f := models.EntryFilter{State: state}
	if project := q.Get("project"); project != "" {
		f.ProjectID = &project
	}
	entries, err := h.svc.ListEntries(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /api/v1/entries/{id}. Deleted entries are returned
// with ?deleted=true.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("deleted") == "true"
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEntry handles POST /api/v1/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in timetracker.EntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.SubmitManualEntry(r.Context(), middleware.ActorFromRequest(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateEntry handles PUT /api/v1/entries/{id}
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var in timetracker.EntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.EditEntry(r.Context(), middleware.ActorFromRequest(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type entryTransition func(ctx context.Context, actor timetracker.Actor, id string) (*models.TimeEntry, error)

// transition adapts a single-entry lifecycle operation into a handler
func transition(op entryTransition, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := op(r.Context(), middleware.ActorFromRequest(r), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, status, e)
	}
}

// DeleteEntry handles DELETE /api/v1/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.SoftDelete, http.StatusOK)(w, r)
}

// RestoreEntry handles POST /api/v1/entries/{id}/restore
func (h *Handler) RestoreEntry(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.Restore, http.StatusOK)(w, r)
}

// ContinueEntry handles POST /api/v1/entries/{id}/continue
func (h *Handler) ContinueEntry(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.ContinueEntry, http.StatusCreated)(w, r)
}

// DuplicateEntry handles POST /api/v1/entries/{id}/duplicate
func (h *Handler) DuplicateEntry(w http.ResponseWriter, r *http.Request) {
	transition(h.svc.DuplicateEntry, http.StatusCreated)(w, r)
}

// EntryHistory handles GET /api/v1/entries/{id}/audit
func (h *Handler) EntryHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.EntryHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
