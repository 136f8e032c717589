package timetracker

import (
	"context"
	"errors"

	"timetracker/internal/storage"
	"timetracker/internal/storage/models"

	"github.com/google/uuid"
)

// Get returns an entry by id. Soft-deleted entries are only returned when
// includeDeleted is set.
func (s *Service) Get(ctx context.Context, id string, includeDeleted bool) (*models.TimeEntry, error) {
	e, err := loadEntry(ctx, s.db.Queries(), id, includeDeleted)
	return e, translate(err)
}

// ListActive returns running entries, newest start first
func (s *Service) ListActive(ctx context.Context) ([]models.TimeEntry, error) {
	return s.list(ctx, models.EntryFilter{State: models.StateRunning})
}

// ListPast returns closed entries, newest start first
func (s *Service) ListPast(ctx context.Context) ([]models.TimeEntry, error) {
	return s.list(ctx, models.EntryFilter{State: models.StateClosed})
}

// ListDeleted returns soft-deleted entries, most recently deleted first
func (s *Service) ListDeleted(ctx context.Context) ([]models.TimeEntry, error) {
	return s.list(ctx, models.EntryFilter{State: models.StateDeleted})
}

// ListEntries returns entries matching an arbitrary filter
func (s *Service) ListEntries(ctx context.Context, f models.EntryFilter) ([]models.TimeEntry, error) {
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f models.EntryFilter) ([]models.TimeEntry, error) {
	entries, err := s.db.Queries().ListEntries(ctx, f)
	return entries, translate(err)
}

// Running returns the running entry, or nil when no timer is running
func (s *Service) Running(ctx context.Context) (*models.TimeEntry, error) {
	entries, err := s.list(ctx, models.EntryFilter{State: models.StateRunning, Limit: 1})
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func loadEntry(ctx context.Context, q *storage.Queries, id string, includeDeleted bool) (*models.TimeEntry, error) {
	e, err := q.GetEntry(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundf("time entry %q does not exist", id)
		}
		return nil, err
	}
	if e.Deleted && !includeDeleted {
		return nil, notFoundf("time entry %q does not exist", id)
	}
	return e, nil
}

// validateEntry checks the per-row invariants
func validateEntry(e *models.TimeEntry) error {
	if e.StartTime.IsZero() {
		return validationf("start time is required")
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return validationf("end time %s is before start time %s",
			e.EndTime.Format("2006-01-02 15:04"), e.StartTime.Format("2006-01-02 15:04"))
	}
	if e.HourlyRate.IsNegative() {
		return validationf("hourly rate must not be negative")
	}
	if e.Deleted != (e.DeletedAt != nil) {
		return validationf("deleted flag and deletion time disagree")
	}
	return nil
}

// ensureSingleRunning fails when e would become a second running entry
func ensureSingleRunning(ctx context.Context, q *storage.Queries, e *models.TimeEntry) error {
	if !e.Running() {
		return nil
	}
	n, err := q.CountRunning(ctx, e.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("another timer is already running")
	}
	return nil
}

// create inserts a new entry after validating it, then returns the stored row
func create(ctx context.Context, q *storage.Queries, e *models.TimeEntry) (*models.TimeEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	if err := ensureSingleRunning(ctx, q, e); err != nil {
		return nil, err
	}
	if err := q.InsertEntry(ctx, e); err != nil {
		return nil, err
	}
	return q.GetEntry(ctx, e.ID)
}

// save persists a mutated entry after re-checking the invariants, then
// returns the stored row
func save(ctx context.Context, q *storage.Queries, e *models.TimeEntry) (*models.TimeEntry, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	if err := ensureSingleRunning(ctx, q, e); err != nil {
		return nil, err
	}
	if err := q.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}
	return q.GetEntry(ctx, e.ID)
}
