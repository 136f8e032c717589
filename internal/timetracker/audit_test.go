package timetracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/storage/models"
)

func TestAudit_OneRowPerMutation(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	var current *models.TimeEntry
	source := env.closedEntry(t, baseTime.Add(-5*time.Hour), time.Hour)

	steps := []struct {
		name   string
		action models.AuditAction
		run    func() (*models.TimeEntry, error)
	}{
		{"start", models.AuditStartTimer, func() (*models.TimeEntry, error) {
			return env.svc.StartTimer(ctx, env.actor, "audited")
		}},
		{"edit running", models.AuditUpdate, func() (*models.TimeEntry, error) {
			return env.svc.EditEntry(ctx, env.actor, current.ID, EntryInput{Description: "audited, edited", StartDate: "2024-01-17", StartTime: "09:45"})
		}},
		{"stop", models.AuditStopTimer, func() (*models.TimeEntry, error) {
			env.clock.Advance(20 * time.Minute)
			return env.svc.StopTimer(ctx, env.actor, current.ID, StopInput{Project: env.project.ID})
		}},
		{"delete", models.AuditDelete, func() (*models.TimeEntry, error) {
			return env.svc.SoftDelete(ctx, env.actor, current.ID)
		}},
		{"restore", models.AuditRestore, func() (*models.TimeEntry, error) {
			return env.svc.Restore(ctx, env.actor, current.ID)
		}},
		{"duplicate", models.AuditDuplicate, func() (*models.TimeEntry, error) {
			return env.svc.DuplicateEntry(ctx, env.actor, current.ID)
		}},
		{"continue", models.AuditContinue, func() (*models.TimeEntry, error) {
			return env.svc.ContinueEntry(ctx, env.actor, source.ID)
		}},
	}

	for _, step := range steps {
		before := env.auditCount(t)
		e, err := step.run()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		current = e

		if got := env.auditCount(t); got != before+1 {
			t.Fatalf("%s: expected exactly one new audit row, got %d", step.name, got-before)
		}
		log := env.lastAudit(t)
		if log.Action != step.action || log.TimeEntryID != e.ID {
			t.Errorf("%s: expected %s for %s, got %s for %s", step.name, step.action, e.ID, log.Action, log.TimeEntryID)
		}
		stored, err := env.svc.Get(ctx, e.ID, true)
		if err != nil {
			t.Fatalf("%s: failed to reload entry: %v", step.name, err)
		}
		if !reflect.DeepEqual(log.CurrentValues, snapshot(stored)) {
			t.Errorf("%s: current values %+v do not match stored entry %+v", step.name, log.CurrentValues, snapshot(stored))
		}
		if !log.Timestamp.Equal(env.clock.Now()) {
			t.Errorf("%s: expected timestamp %v, got %v", step.name, env.clock.Now(), log.Timestamp)
		}
	}
}

func TestQueryAudit_Paging(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		start := baseTime.Add(-time.Duration(i+2) * time.Hour)
		env.closedEntry(t, start, 30*time.Minute)
	}

	page, err := env.svc.QueryAudit(ctx, AuditQuery{})
	if err != nil {
		t.Fatalf("Failed to query audit: %v", err)
	}
	if page.Page != 1 || page.PageSize != AuditPageSize || page.Total != 55 || !page.HasNext || len(page.Logs) != 50 {
		t.Errorf("Unexpected first page: page=%d size=%d total=%d next=%v logs=%d",
			page.Page, page.PageSize, page.Total, page.HasNext, len(page.Logs))
	}
	for i := 1; i < len(page.Logs); i++ {
		if page.Logs[i-1].ID <= page.Logs[i].ID {
			t.Fatalf("Expected newest first, got id %d before %d", page.Logs[i-1].ID, page.Logs[i].ID)
		}
	}

	page2, err := env.svc.QueryAudit(ctx, AuditQuery{Page: 2})
	if err != nil {
		t.Fatalf("Failed to query audit: %v", err)
	}
	if len(page2.Logs) != 5 || page2.HasNext {
		t.Errorf("Expected 5 rows and no next page, got %d %v", len(page2.Logs), page2.HasNext)
	}

	last, err := env.svc.QueryAudit(ctx, AuditQuery{Page: MaxAuditPage})
	if err != nil {
		t.Fatalf("Failed to query the last allowed page: %v", err)
	}
	if len(last.Logs) != 0 || last.Page != MaxAuditPage {
		t.Errorf("Expected an empty last page, got %d rows on page %d", len(last.Logs), last.Page)
	}
	for _, p := range []int{MaxAuditPage + 1, math.MaxInt} {
		if _, err := env.svc.QueryAudit(ctx, AuditQuery{Page: p}); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation for page %d, got %v", p, err)
		}
	}
}

func TestQueryAudit_Filters(t *testing.T) {
	env := newTestEnv(t, config.WorkspaceConfig{})
	ctx := context.Background()

	bob := "bob"
	bobActor := Actor{UserID: &bob, IP: "198.51.100.1"}
	anon := Actor{IP: "192.0.2.1"}

	e, _ := env.svc.StartTimer(ctx, env.actor, "alice timer")
	env.clock.Advance(time.Hour)
	env.svc.StopTimer(ctx, bobActor, e.ID, StopInput{Project: env.project.ID})
	env.clock.Advance(time.Hour)
	env.svc.SoftDelete(ctx, anon, e.ID)

	from := baseTime.Add(30 * time.Minute)
	to := baseTime.Add(90 * time.Minute)

	tests := []struct {
		name  string
		query AuditQuery
		want  []models.AuditAction
	}{
		{"all", AuditQuery{}, []models.AuditAction{models.AuditDelete, models.AuditStopTimer, models.AuditStartTimer}},
		{"by action", AuditQuery{Action: models.AuditStopTimer}, []models.AuditAction{models.AuditStopTimer}},
		{"by user", AuditQuery{UserID: "alice"}, []models.AuditAction{models.AuditStartTimer}},
		{"by date range", AuditQuery{From: &from, To: &to}, []models.AuditAction{models.AuditStopTimer}},
		{"no match", AuditQuery{UserID: "carol"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.svc.QueryAudit(ctx, tt.query)
			if err != nil {
				t.Fatalf("Failed to query audit: %v", err)
			}
			var got []models.AuditAction
			for _, l := range page.Logs {
				got = append(got, l.Action)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	page, _ := env.svc.QueryAudit(ctx, AuditQuery{Action: models.AuditDelete})
	if len(page.Logs) != 1 || page.Logs[0].UserID != nil {
		t.Errorf("Expected anonymous delete row, got %+v", page.Logs)
	}

	if _, err := env.svc.QueryAudit(ctx, AuditQuery{From: &to, To: &from}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for inverted range, got %v", err)
	}
}
