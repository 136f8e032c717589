package models

import (
	"fmt"
	"time"
)

// AuditAction is the kind of lifecycle transition recorded in the audit log.
type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditUpdate     AuditAction = "UPDATE"
	AuditDelete     AuditAction = "DELETE"
	AuditRestore    AuditAction = "RESTORE"
	AuditStartTimer AuditAction = "START_TIMER"
	AuditStopTimer  AuditAction = "STOP_TIMER"
	AuditContinue   AuditAction = "CONTINUE"
	AuditDuplicate  AuditAction = "DUPLICATE"
)

// AuditActions lists every valid action in display order.
var AuditActions = []AuditAction{
	AuditCreate,
	AuditUpdate,
	AuditDelete,
	AuditRestore,
	AuditStartTimer,
	AuditStopTimer,
	AuditContinue,
	AuditDuplicate,
}

// ParseAuditAction converts a string into an AuditAction
func ParseAuditAction(s string) (AuditAction, error) {
	for _, a := range AuditActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown audit action %q", s)
}

// Label returns the human readable name of the action.
func (a AuditAction) Label() string {
	switch a {
	case AuditCreate:
		return "Created"
	case AuditUpdate:
		return "Updated"
	case AuditDelete:
		return "Deleted"
	case AuditRestore:
		return "Restored"
	case AuditStartTimer:
		return "Started Timer"
	case AuditStopTimer:
		return "Stopped Timer"
	case AuditContinue:
		return "Continued Entry"
	case AuditDuplicate:
		return "Duplicated Entry"
	}
	return string(a)
}

// Snapshot is the structured copy of a time entry stored with audit rows.
type Snapshot struct {
	ID              string  `json:"id"`
	ProjectID       *string `json:"project_id"`
	ProjectName     *string `json:"project_name"`
	TaskID          *string `json:"task_id"`
	TaskName        *string `json:"task_name"`
	Description     string  `json:"description"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Billable        bool    `json:"billable"`
	HourlyRate      string  `json:"hourly_rate"`
	Deleted         bool    `json:"deleted"`
	DeletedAt       *string `json:"deleted_at"`
	DurationMinutes int     `json:"duration_minutes"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID             int64       `json:"id"`
	TimeEntryID    string      `json:"time_entry_id"`
	Action         AuditAction `json:"action"`
	UserID         *string     `json:"user_id"`
	Timestamp      time.Time   `json:"timestamp"`
	IPAddress      string      `json:"ip_address"`
	UserAgent      string      `json:"user_agent"`
	SessionKey     string      `json:"session_key"`
	PreviousValues *Snapshot   `json:"previous_values"`
	CurrentValues  *Snapshot   `json:"current_values"`
	Notes          string      `json:"notes"`
}

// AuditFilter narrows audit log queries.
type AuditFilter struct {
	Action      AuditAction
	UserID      string
	TimeEntryID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
