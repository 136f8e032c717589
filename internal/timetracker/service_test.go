package timetracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/events"
	"timetracker/internal/storage"
	"timetracker/internal/storage/models"
)

// Wednesday
var baseTime = time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testEnv struct {
	svc     *Service
	db      *storage.DB
	clock   *fakeClock
	pub     *recordingPublisher
	actor   Actor
	client  *models.Client
	project *models.Project
}

func newTestEnv(t *testing.T, ws config.WorkspaceConfig) *testEnv {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "timetracker.db"))
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if ws.WeekStart == "" {
		ws.WeekStart = "monday"
	}
	clock := &fakeClock{t: baseTime}
	pub := &recordingPublisher{}
	svc := New(db, ws, WithClock(clock.Now), WithPublisher(pub))

	user := "alice"
	env := &testEnv{
		svc:   svc,
		db:    db,
		clock: clock,
		pub:   pub,
		actor: Actor{UserID: &user, IP: "203.0.113.7", UserAgent: "test-agent", SessionKey: "sess-1"},
	}

	ctx := context.Background()
	env.client, err = svc.CreateClient(ctx, "Acme Corp", "billing@acme.test", "Acme")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	env.project, err = svc.CreateProject(ctx, "Website", env.client.ID)
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	return env
}

func (env *testEnv) auditCount(t *testing.T) int {
	t.Helper()
	n, err := env.db.Queries().CountAuditLogs(context.Background(), models.AuditFilter{})
	if err != nil {
		t.Fatalf("Failed to count audit logs: %v", err)
	}
	return n
}

func (env *testEnv) lastAudit(t *testing.T) models.AuditLog {
	t.Helper()
	logs, err := env.db.Queries().ListAuditLogs(context.Background(), models.AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to list audit logs: %v", err)
	}
	if len(logs) == 0 {
		t.Fatal("Expected at least one audit log")
	}
	return logs[0]
}

func (env *testEnv) closedEntry(t *testing.T, start time.Time, d time.Duration) *models.TimeEntry {
	t.Helper()
	local := start.In(env.svc.Location())
	end := local.Add(d)
	e, err := env.svc.SubmitManualEntry(context.Background(), env.actor, EntryInput{
		ProjectID:   env.project.ID,
		Description: "manual work",
		StartDate:   local.Format("2006-01-02"),
		StartTime:   local.Format("15:04"),
		EndDate:     end.Format("2006-01-02"),
		EndTime:     end.Format("15:04"),
	})
	if err != nil {
		t.Fatalf("Failed to submit manual entry: %v", err)
	}
	return e
}

func TestNew_Defaults(t *testing.T) {
	svc := New(nil, config.WorkspaceConfig{Timezone: "Not/AZone"})
	if svc.Location() != time.UTC {
		t.Errorf("Expected UTC fallback, got %v", svc.Location())
	}
	if _, ok := svc.events.(events.Nop); !ok {
		t.Errorf("Expected Nop publisher by default, got %T", svc.events)
	}

	// A nil publisher keeps the default
	svc = New(nil, config.WorkspaceConfig{}, WithPublisher(nil))
	if _, ok := svc.events.(events.Nop); !ok {
		t.Errorf("Expected Nop publisher, got %T", svc.events)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"storage not found", storage.ErrNotFound, ErrNotFound},
		{"storage conflict", storage.ErrConflict, ErrConflict},
		{"validation passes through", validationf("bad"), ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	other := errors.New("disk full")
	if got := translate(other); got != other {
		t.Errorf("Expected storage failure unchanged, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	if snapshot(nil) != nil {
		t.Error("Expected nil snapshot for nil entry")
	}

	pid := "p1"
	end := baseTime.Add(90 * time.Minute)
	s := snapshot(&models.TimeEntry{
		ID:          "e1",
		ProjectID:   &pid,
		ProjectName: "Website",
		TaskName:    "ignored without task id",
		Description: "work",
		StartTime:   baseTime,
		EndTime:     &end,
		Billable:    true,
	})
	if s.ProjectName == nil || *s.ProjectName != "Website" {
		t.Errorf("Expected project name Website, got %v", s.ProjectName)
	}
	if s.TaskID != nil || s.TaskName != nil {
		t.Errorf("Expected no task in snapshot, got %v %v", s.TaskID, s.TaskName)
	}
	if s.DurationMinutes != 90 {
		t.Errorf("Expected 90 minutes, got %d", s.DurationMinutes)
	}
	if s.StartTime == nil || *s.StartTime != "2024-01-17T10:00:00Z" {
		t.Errorf("Unexpected start time %v", s.StartTime)
	}
	if s.HourlyRate != "0" {
		t.Errorf("Expected hourly rate 0, got %q", s.HourlyRate)
	}
}
