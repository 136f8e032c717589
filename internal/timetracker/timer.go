package timetracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"timetracker/internal/logger"
	"timetracker/internal/storage"
	"timetracker/internal/storage/models"

	"github.com/shopspring/decimal"
)

// StopInput carries the fields collected when stopping a timer. Project
// and Task take an existing id or NewRef; with NewRef the matching New*
// fields describe the record to create.
type StopInput struct {
	Project          string `json:"project"`
	NewProjectName   string `json:"new_project_name"`
	NewProjectClient string `json:"new_project_client"`
	Task             string `json:"task"`
	NewTaskName      string `json:"new_task_name"`
	Description      string `json:"description"`
}

// StartTimer starts a new running entry. It fails with ErrConflict when a
// timer is already running.
func (s *Service) StartTimer(ctx context.Context, actor Actor, description string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := create(ctx, q, &models.TimeEntry{
			Description: strings.TrimSpace(description),
			StartTime:   s.now(),
			Billable:    true,
			HourlyRate:  decimal.Zero,
		})
		if err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditStartTimer, nil, "")
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Timer started", "entry_id", out.ID)
	s.publish(ctx, out.ID, models.AuditStartTimer)
	return out, nil
}

// StopTimer closes a running entry and assigns its project and task,
// creating them first when requested.
func (s *Service) StopTimer(ctx context.Context, actor Actor, id string, in StopInput) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := loadEntry(ctx, q, id, true)
		if err != nil {
			return err
		}
		if e.Deleted {
			return conflictf("time entry %q is deleted", id)
		}
		if e.EndTime != nil {
			return conflictf("time entry %q is not running", id)
		}

		// Project first so a new task can bind to its id
		projectID, err := resolveProject(ctx, q, in)
		if err != nil {
			return err
		}
		taskID, err := resolveTask(ctx, q, in, projectID)
		if err != nil {
			return err
		}

		previous := snapshot(e)
		now := s.now()
		e.EndTime = &now
		e.ProjectID = &projectID
		e.TaskID = taskID
		if d := strings.TrimSpace(in.Description); d != "" {
			e.Description = d
		}

		if e, err = save(ctx, q, e); err != nil {
			return err
		}
		out = e
		notes := fmt.Sprintf("Timer stopped after %d minutes", e.DurationMinutes())
		return s.record(ctx, q, actor, e, models.AuditStopTimer, previous, notes)
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Timer stopped", "entry_id", out.ID, "minutes", out.DurationMinutes())
	s.publish(ctx, out.ID, models.AuditStopTimer)
	return out, nil
}

func resolveProject(ctx context.Context, q *storage.Queries, in StopInput) (string, error) {
	ref := strings.TrimSpace(in.Project)
	switch ref {
	case "":
		return "", validationf("a project is required to stop the timer")
	case NewRef:
		p, err := createProject(ctx, q, in.NewProjectName, in.NewProjectClient)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	}
	p, err := existingProject(ctx, q, ref)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func resolveTask(ctx context.Context, q *storage.Queries, in StopInput, projectID string) (*string, error) {
	ref := strings.TrimSpace(in.Task)
	switch ref {
	case "":
		return nil, nil
	case NewRef:
		t, err := createTask(ctx, q, in.NewTaskName, projectID)
		if err != nil {
			return nil, err
		}
		return &t.ID, nil
	}
	t, err := existingTask(ctx, q, ref, &projectID)
	if err != nil {
		return nil, err
	}
	return &t.ID, nil
}

// DiscardTimer physically removes a running entry. The audit row is
// written first and survives the removal.
func (s *Service) DiscardTimer(ctx context.Context, actor Actor, id string) error {
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := loadEntry(ctx, q, id, true)
		if err != nil {
			return err
		}
		if !e.Running() {
			return conflictf("only a running timer can be discarded")
		}

		elapsed := s.now().Sub(e.StartTime)
		if elapsed < 0 {
			elapsed = 0
		}
		notes := fmt.Sprintf("Discarded running timer after %d minutes", int(elapsed/time.Minute))
		if err := s.record(ctx, q, actor, e, models.AuditDelete, nil, notes); err != nil {
			return err
		}
		return q.DeleteEntry(ctx, e.ID)
	})
	if err != nil {
		return translate(err)
	}

	logger.Info("Timer discarded", "entry_id", id)
	s.publish(ctx, id, models.AuditDelete)
	return nil
}

// ContinueEntry starts a new running entry with the project, task and
// description of an existing one.
func (s *Service) ContinueEntry(ctx context.Context, actor Actor, id string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		src, err := loadEntry(ctx, q, id, false)
		if err != nil {
			return err
		}
		n, err := q.CountRunning(ctx, "")
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("stop the running timer before continuing an entry")
		}

		e, err := create(ctx, q, &models.TimeEntry{
			ProjectID:   src.ProjectID,
			TaskID:      src.TaskID,
			Description: src.Description,
			StartTime:   s.now(),
			Billable:    src.Billable,
			HourlyRate:  src.HourlyRate,
		})
		if err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditContinue, nil, fmt.Sprintf("Continued from entry %s", src.ID))
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Entry continued", "entry_id", out.ID, "source_id", id)
	s.publish(ctx, out.ID, models.AuditContinue)
	return out, nil
}

// DuplicateEntry copies a closed entry, times included, into a new one.
func (s *Service) DuplicateEntry(ctx context.Context, actor Actor, id string) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		src, err := loadEntry(ctx, q, id, false)
		if err != nil {
			return err
		}
		if src.EndTime == nil {
			return conflictf("a running timer cannot be duplicated")
		}

		end := *src.EndTime
		e, err := create(ctx, q, &models.TimeEntry{
			ProjectID:   src.ProjectID,
			TaskID:      src.TaskID,
			Description: src.Description,
			StartTime:   src.StartTime,
			EndTime:     &end,
			Billable:    src.Billable,
			HourlyRate:  src.HourlyRate,
		})
		if err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditDuplicate, nil, fmt.Sprintf("Duplicated from entry %s", src.ID))
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Entry duplicated", "entry_id", out.ID, "source_id", id)
	s.publish(ctx, out.ID, models.AuditDuplicate)
	return out, nil
}
