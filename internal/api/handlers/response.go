package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"timetracker/internal/api/middleware"
	"timetracker/internal/logger"
	"timetracker/internal/timetracker"
)

// Handler serves the time tracking API on top of the service
type Handler struct {
	svc *timetracker.Service
}

// New creates a Handler instance
func New(svc *timetracker.Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err, "status", status)
	}
}

// writeErrorWithRequestID writes a standardized error response with optional request ID
func writeErrorWithRequestID(w http.ResponseWriter, r *http.Request, status int, message string) {
	response := map[string]any{
		"error":  message,
		"status": http.StatusText(status),
	}
	if r != nil {
		if requestID := middleware.GetRequestID(r); requestID != "" {
			response["request_id"] = requestID
		}
	}
	writeJSON(w, status, response)
}

// writeServiceError maps service error kinds onto HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, timetracker.ErrValidation):
		writeErrorWithRequestID(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, timetracker.ErrNotFound):
		writeErrorWithRequestID(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, timetracker.ErrConflict):
		writeErrorWithRequestID(w, r, http.StatusConflict, err.Error())
	default:
		logger.Error("Request failed", "error", err, "path", r.URL.Path, "request_id", middleware.GetRequestID(r))
		writeErrorWithRequestID(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeErrorWithRequestID(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		return false
	}
	writeErrorWithRequestID(w, r, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
	return false
}
