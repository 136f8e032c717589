package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry represents a tracked block of time.
// A nil EndTime means the timer is still running.
type TimeEntry struct {
	ID          string          `json:"id"`
	ProjectID   *string         `json:"project_id"`
	TaskID      *string         `json:"task_id"`
	Description string          `json:"description"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time"`
	Billable    bool            `json:"billable"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Deleted     bool            `json:"deleted"`
	DeletedAt   *time.Time      `json:"deleted_at"`

	// Filled by reads that join the directory tables
	ProjectName string `json:"project_name,omitempty"`
	TaskName    string `json:"task_name,omitempty"`
}

// Running reports whether the entry is an active timer.
func (e *TimeEntry) Running() bool {
	return e.EndTime == nil && !e.Deleted
}

// Duration returns the elapsed time between start and end, zero while running.
func (e *TimeEntry) Duration() time.Duration {
	if e.EndTime == nil || e.StartTime.IsZero() {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// DurationMinutes returns the whole minutes between start and end.
func (e *TimeEntry) DurationMinutes() int {
	return int(e.Duration() / time.Minute)
}

// EntryState selects a listing of time entries.
type EntryState int

const (
	// StateRunning lists non-deleted entries without an end time
	StateRunning EntryState = iota
	// StateClosed lists non-deleted entries with an end time
	StateClosed
	// StateDeleted lists soft-deleted entries
	StateDeleted
)

// EntryFilter narrows entry listings.
type EntryFilter struct {
	State     EntryState
	ProjectID *string
	From      *time.Time // inclusive lower bound on start time
	To        *time.Time // exclusive upper bound on start time
	Limit     int
}
