package api

import (
	"encoding/json"
	"net/http"

	"timetracker/internal/logger"
)

var endpoints = []string{
	"/health - Health check",
	"/api/v1/tracker - Running timer, past entries and selection lists",
	"/api/v1/summary - Hours today, this week and per project",
	"/api/v1/timer/start - Start a timer",
	"/api/v1/timer/{id}/stop - Stop a timer",
	"/api/v1/timer/{id}/discard - Discard a running timer",
	"/api/v1/entries - List and create time entries",
	"/api/v1/audit - Query the audit trail",
}

func writeIndex(w http.ResponseWriter, workspace string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"message":   "timetracker API",
		"version":   Version,
		"workspace": workspace,
		"endpoints": endpoints,
	}); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
