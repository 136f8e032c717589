package timetracker

import (
	"context"

	"timetracker/internal/logger"
	"timetracker/internal/storage"
	"timetracker/internal/storage/models"
)

// SoftDelete hides an entry from the normal listings without removing it
func (s *Service) SoftDelete(ctx context.Context, actor Actor, id string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := loadEntry(ctx, q, id, false)
		if err != nil {
			return err
		}
		previous := snapshot(e)
		now := s.now()
		e.Deleted = true
		e.DeletedAt = &now

		if e, err = save(ctx, q, e); err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditDelete, previous, "")
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Entry deleted", "entry_id", out.ID)
	s.publish(ctx, out.ID, models.AuditDelete)
	return out, nil
}

// Restore brings back a soft-deleted entry. Restoring a running entry
// while another timer runs fails with ErrConflict.
func (s *Service) Restore(ctx context.Context, actor Actor, id string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := loadEntry(ctx, q, id, true)
		if err != nil {
			return err
		}
		if !e.Deleted {
			return notFoundf("time entry %q is not deleted", id)
		}
		previous := snapshot(e)
		e.Deleted = false
		e.DeletedAt = nil

		if e, err = save(ctx, q, e); err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditRestore, previous, "")
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Entry restored", "entry_id", out.ID)
	s.publish(ctx, out.ID, models.AuditRestore)
	return out, nil
}
