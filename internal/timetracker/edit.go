package timetracker

import (
	"context"
	"strings"
	"time"

	"timetracker/internal/logger"
	"timetracker/internal/storage"
	"timetracker/internal/storage/models"

	"github.com/shopspring/decimal"
)

// EntryInput holds the form fields of a manual or edited entry. Dates use
// 2006-01-02 and times 15:04 or 15:04:05, both in the workspace time zone.
// A nil Billable and an empty HourlyRate keep the current value on edit.
type EntryInput struct {
	ProjectID   string `json:"project_id"`
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	StartTime   string `json:"start_time"`
	EndDate     string `json:"end_date"`
	EndTime     string `json:"end_time"`
	Billable    *bool  `json:"billable"`
	HourlyRate  string `json:"hourly_rate"`
}

var clockLayouts = []string{"15:04", "15:04:05"}

// localTime combines a date and a clock time in loc
func localTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc).UTC(), nil
		}
	}
	return time.Time{}, validationf("invalid time %q, expected HH:MM", clock)
}

// interval parses the start and optional end of an entry. A missing end
// date defaults to the start date.
func (in EntryInput) interval(loc *time.Location) (time.Time, *time.Time, error) {
	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.StartTime) == "" {
		return time.Time{}, nil, validationf("start date and time are required")
	}
	start, err := localTime(in.StartDate, in.StartTime, loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	if strings.TrimSpace(in.EndTime) == "" {
		if strings.TrimSpace(in.EndDate) != "" {
			return time.Time{}, nil, validationf("end time is required when an end date is given")
		}
		return start, nil, nil
	}
	endDate := in.EndDate
	if strings.TrimSpace(endDate) == "" {
		endDate = in.StartDate
	}
	end, err := localTime(endDate, in.EndTime, loc)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, &end, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, validationf("invalid hourly rate %q", s)
	}
	if rate.IsNegative() {
		return decimal.Zero, validationf("hourly rate must not be negative")
	}
	return rate, nil
}

// applyInput copies the input onto e. The project the entry already has
// stays selectable even when archived.
func (s *Service) applyInput(ctx context.Context, q *storage.Queries, e *models.TimeEntry, in EntryInput) error {
	start, end, err := in.interval(s.loc)
	if err != nil {
		return err
	}

	var projectID *string
	if ref := strings.TrimSpace(in.ProjectID); ref != "" {
		if e.ProjectID == nil || *e.ProjectID != ref {
			if _, err := existingProject(ctx, q, ref); err != nil {
				return err
			}
		}
		projectID = &ref
	}
	var taskID *string
	if ref := strings.TrimSpace(in.TaskID); ref != "" {
		if _, err := existingTask(ctx, q, ref, projectID); err != nil {
			return err
		}
		taskID = &ref
	}

	if strings.TrimSpace(in.HourlyRate) != "" {
		rate, err := parseRate(in.HourlyRate)
		if err != nil {
			return err
		}
		e.HourlyRate = rate
	}
	if in.Billable != nil {
		e.Billable = *in.Billable
	}

	e.ProjectID = projectID
	e.TaskID = taskID
	e.Description = strings.TrimSpace(in.Description)
	e.StartTime = start
	e.EndTime = end
	return nil
}

// EditEntry updates any non-deleted entry. A running entry may keep a
// blank end time, or be closed by giving one; a stopped one may not lose
// its end time.
func (s *Service) EditEntry(ctx context.Context, actor Actor, id string, in EntryInput) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e, err := loadEntry(ctx, q, id, true)
		if err != nil {
			return err
		}
		if e.Deleted {
			return conflictf("time entry %q is deleted", id)
		}
		wasClosed := e.EndTime != nil
		previous := snapshot(e)

		if err := s.applyInput(ctx, q, e, in); err != nil {
			return err
		}
		if wasClosed && e.EndTime == nil {
			return validationf("end time is required for a stopped entry")
		}
		if e.EndTime == nil && e.StartTime.After(s.now()) {
			return validationf("a running entry cannot start in the future")
		}

		if e, err = save(ctx, q, e); err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditUpdate, previous, "")
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Entry updated", "entry_id", out.ID)
	s.publish(ctx, out.ID, models.AuditUpdate)
	return out, nil
}

// SubmitManualEntry creates a stopped entry from form input
func (s *Service) SubmitManualEntry(ctx context.Context, actor Actor, in EntryInput) (*models.TimeEntry, error) {
	var out *models.TimeEntry
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		e := &models.TimeEntry{Billable: true, HourlyRate: decimal.Zero}
		if err := s.applyInput(ctx, q, e, in); err != nil {
			return err
		}
		if e.EndTime == nil {
			return validationf("end time is required for a manual entry")
		}

		e, err := create(ctx, q, e)
		if err != nil {
			return err
		}
		out = e
		return s.record(ctx, q, actor, e, models.AuditCreate, nil, "")
	})
	if err != nil {
		return nil, translate(err)
	}

	logger.Info("Manual entry created", "entry_id", out.ID)
	s.publish(ctx, out.ID, models.AuditCreate)
	return out, nil
}
