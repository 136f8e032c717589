package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"timetracker/internal/storage/models"
	"timetracker/internal/timetracker"
)

// parseDay reads a YYYY-MM-DD query value as local midnight in loc
func parseDay(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// parseDayRange reads from/to query values; to is inclusive
func parseDayRange(r *http.Request, loc *time.Location) (*time.Time, *time.Time, error) {
	q := r.URL.Query()
	from, err := parseDay(q.Get("from"), loc)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDay(q.Get("to"), loc)
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	return from, to, nil
}

// GetAuditLogs handles GET /api/v1/audit?action=&user=&from=&to=&page=
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := timetracker.AuditQuery{UserID: q.Get("user"), Page: 1}

	if action := q.Get("action"); action != "" {
		a, err := models.ParseAuditAction(action)
		if err != nil {
			writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
			return
		}
		query.Action = a
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			writeErrorWithRequestID(w, r, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		query.Page = page
	}

	var err error
	if query.From, query.To, err = parseDayRange(r, h.svc.Location()); err != nil {
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.QueryAudit(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
