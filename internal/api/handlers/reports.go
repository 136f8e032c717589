package handlers

import (
	"net/http"
)

// Tracker handles GET /api/v1/tracker
func (h *Handler) Tracker(w http.ResponseWriter, r *http.Request) {
	tr, err := h.svc.Tracker(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// Summary handles GET /api/v1/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ProjectTotals handles GET /api/v1/reports/projects?from=&to=. Without a
// range it reports the last seven days including today.
func (h *Handler) ProjectTotals(w http.ResponseWriter, r *http.Request) {
	loc := h.svc.Location()
	from, to, err := parseDayRange(r, loc)
	if err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if to == nil {
		end := h.svc.Today().AddDate(0, 0, 1)
		to = &end
	}
	if from == nil {
		start := to.AddDate(0, 0, -7)
		from = &start
	}

	totals, err := h.svc.ProjectTotals(r.Context(), *from, *to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
