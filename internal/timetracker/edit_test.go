package timetracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/storage/models"

	"github.com/shopspring/decimal"
)

func boolPtr(b bool) *bool { return &b }

func TestLocalTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("Time zone data unavailable: %v", err)
	}
	tests := []struct {
		name    string
		date    string
		clock   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{"utc minutes", "2024-01-15", "09:30", time.UTC, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), false},
		{"utc seconds", "2024-01-15", "09:30:15", time.UTC, time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC), false},
		{"new york winter", "2024-01-15", "09:00", ny, time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC), false},
		{"new york summer", "2024-07-15", "09:00", ny, time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC), false},
		{"bad date", "15/01/2024", "09:00", time.UTC, time.Time{}, true},
		{"bad time", "2024-01-15", "9am", time.UTC, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := localTime(tt.date, tt.clock, tt.loc)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEditEntry(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	task, _ := env.svc.CreateTask(ctx, "Design", env.project.ID)
	e := env.closedEntry(t, baseTime.Add(-3*time.Hour), time.Hour)

	edited, err := env.svc.EditEntry(ctx, env.actor, e.ID, EntryInput{
		ProjectID:   env.project.ID,
		TaskID:      task.ID,
		Description: "reworked",
		StartDate:   "2024-01-16",
		StartTime:   "13:00",
		EndTime:     "15:15",
		Billable:    boolPtr(false),
		HourlyRate:  "85.50",
	})
	if err != nil {
		t.Fatalf("Failed to edit entry: %v", err)
	}
	if edited.DurationMinutes() != 135 || edited.Description != "reworked" || edited.Billable {
		t.Errorf("Unexpected edited entry: %+v", edited)
	}
	if !edited.HourlyRate.Equal(decimal.RequireFromString("85.5")) {
		t.Errorf("Expected rate 85.5, got %s", edited.HourlyRate)
	}
	if edited.TaskName != "Design" {
		t.Errorf("Expected task Design, got %q", edited.TaskName)
	}

	log := env.lastAudit(t)
	if log.Action != models.AuditUpdate || log.PreviousValues == nil || log.PreviousValues.Description != "manual work" {
		t.Errorf("Expected UPDATE with pre-edit snapshot, got %+v", log)
	}
	if log.CurrentValues.Description != "reworked" || log.CurrentValues.DurationMinutes != 135 {
		t.Errorf("Expected post-edit snapshot, got %+v", log.CurrentValues)
	}
}

func TestEditEntry_WorkspaceTimeZone(t *testing.T) {
	if _, err := time.LoadLocation("Europe/Berlin"); err != nil {
		t.Skipf("Time zone data unavailable: %v", err)
	}
	env := newTestEnv(t, config.WorkspaceConfig{Timezone: "Europe/Berlin"})
	ctx := context.Background()

	e := env.closedEntry(t, baseTime.Add(-3*time.Hour), time.Hour)
	edited, err := env.svc.EditEntry(ctx, env.actor, e.ID, EntryInput{
		ProjectID: env.project.ID,
		StartDate: "2024-01-16",
		StartTime: "09:00",
		EndDate:   "2024-01-16",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("Failed to edit entry: %v", err)
	}
	want := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	if !edited.StartTime.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, edited.StartTime)
	}
}

func TestEditEntry_RunningAndClosedEnd(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	running, _ := env.svc.StartTimer(ctx, env.actor, "live")
	edited, err := env.svc.EditEntry(ctx, env.actor, running.ID, EntryInput{
		Description: "live, renamed",
		StartDate:   "2024-01-17",
		StartTime:   "09:00",
	})
	if err != nil {
		t.Fatalf("Failed to edit running entry: %v", err)
	}
	if edited.EndTime != nil || edited.Description != "live, renamed" {
		t.Errorf("Expected entry still running with new description, got %+v", edited)
	}

	closed := env.closedEntry(t, baseTime.Add(-5*time.Hour), time.Hour)
	_, err = env.svc.EditEntry(ctx, env.actor, closed.ID, EntryInput{StartDate: "2024-01-17", StartTime: "05:00"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation clearing the end of a closed entry, got %v", err)
	}

	// A running entry moved past the clock could never be stopped
	auditBefore := env.auditCount(t)
	_, err = env.svc.EditEntry(ctx, env.actor, running.ID, EntryInput{StartDate: "2024-01-18", StartTime: "09:00"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation moving a running entry into the future, got %v", err)
	}
	if env.auditCount(t) != auditBefore {
		t.Error("Rejected edit wrote an audit row")
	}
	stopped, err := env.svc.StopTimer(ctx, env.actor, running.ID, StopInput{Project: env.project.ID})
	if err != nil {
		t.Fatalf("Expected the running entry to stay stoppable, got %v", err)
	}
	if stopped.EndTime == nil {
		t.Error("Expected the entry to be stopped")
	}
}

func TestEditEntry_Errors(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	e := env.closedEntry(t, baseTime.Add(-3*time.Hour), time.Hour)
	valid := EntryInput{ProjectID: env.project.ID, StartDate: "2024-01-17", StartTime: "07:00", EndTime: "08:00"}

	tests := []struct {
		name string
		mut  func(in *EntryInput)
		want error
	}{
		{"end before start", func(in *EntryInput) { in.EndTime = "06:00" }, ErrValidation},
		{"missing start", func(in *EntryInput) { in.StartTime = "" }, ErrValidation},
		{"end date without time", func(in *EntryInput) { in.EndDate = "2024-01-17"; in.EndTime = "" }, ErrValidation},
		{"negative rate", func(in *EntryInput) { in.HourlyRate = "-1" }, ErrValidation},
		{"bad rate", func(in *EntryInput) { in.HourlyRate = "lots" }, ErrValidation},
		{"unknown project", func(in *EntryInput) { in.ProjectID = "ghost" }, ErrValidation},
		{"task without project", func(in *EntryInput) { in.ProjectID = ""; in.TaskID = "ghost" }, ErrValidation},
	}

	auditBefore := env.auditCount(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			if _, err := env.svc.EditEntry(ctx, env.actor, e.ID, in); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
	if env.auditCount(t) != auditBefore {
		t.Error("Rejected edits wrote audit rows")
	}

	if _, err := env.svc.EditEntry(ctx, env.actor, "missing", valid); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	env.svc.SoftDelete(ctx, env.actor, e.ID)
	if _, err := env.svc.EditEntry(ctx, env.actor, e.ID, valid); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict editing a deleted entry, got %v", err)
	}
}

func TestSave_RejectsEndBeforeStart(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	e := env.closedEntry(t, baseTime.Add(-3*time.Hour), time.Hour)
	bad := e.StartTime.Add(-time.Minute)
	e.EndTime = &bad

	_, err := save(ctx, env.db.Queries(), e)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	stored, _ := env.svc.Get(ctx, e.ID, false)
	if stored.EndTime.Before(stored.StartTime) {
		t.Error("Invalid entry was persisted")
	}
}

func TestSubmitManualEntry(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	e, err := env.svc.SubmitManualEntry(ctx, env.actor, EntryInput{
		Description: "no project",
		StartDate:   "2024-01-16",
		StartTime:   "22:00",
		EndDate:     "2024-01-17",
		EndTime:     "01:30",
		HourlyRate:  "40",
	})
	if err != nil {
		t.Fatalf("Failed to submit manual entry: %v", err)
	}
	if e.ProjectID != nil || e.DurationMinutes() != 210 || !e.Billable {
		t.Errorf("Unexpected manual entry: %+v", e)
	}
	log := env.lastAudit(t)
	if log.Action != models.AuditCreate || log.PreviousValues != nil || log.CurrentValues.ID != e.ID {
		t.Errorf("Unexpected audit row: %+v", log)
	}

	_, err = env.svc.SubmitManualEntry(ctx, env.actor, EntryInput{StartDate: "2024-01-16", StartTime: "09:00"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation without an end, got %v", err)
	}
}
