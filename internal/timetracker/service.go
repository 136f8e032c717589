package timetracker

import (
	"context"
	"time"

	"timetracker/internal/config"
	"timetracker/internal/events"
	"timetracker/internal/logger"
	"timetracker/internal/storage"
	"timetracker/internal/storage/models"
)

// NewRef is passed instead of an id to request inline creation of a
// project or task while stopping a timer.
const NewRef = "new"

// Service runs the time entry lifecycle. Every mutating operation is one
// database transaction that also writes its audit row.
type Service struct {
	db     *storage.DB
	ws     config.WorkspaceConfig
	loc    *time.Location
	clock  func() time.Time
	events events.Publisher
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

// WithPublisher sets where lifecycle events are sent after commit
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// New creates a Service bound to a store and a single workspace
func New(db *storage.DB, ws config.WorkspaceConfig, opts ...Option) *Service {
	s := &Service{
		db:     db,
		ws:     ws,
		loc:    ws.Location(),
		clock:  time.Now,
		events: events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workspace returns the workspace configuration the service runs with
func (s *Service) Workspace() config.WorkspaceConfig {
	return s.ws
}

// Location returns the time zone used for local dates and reports
func (s *Service) Location() *time.Location {
	return s.loc
}

// Ping checks the underlying store
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

// publish announces a committed transition. Failures are logged only.
func (s *Service) publish(ctx context.Context, entryID string, action models.AuditAction) {
	ev := events.Event{EntryID: entryID, Action: action, At: s.now()}
	if err := s.events.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish lifecycle event", "entry_id", entryID, "action", string(action), "error", err)
	}
}
