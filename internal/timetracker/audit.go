package timetracker

import (
	"context"
	"math"
	"time"

	"timetracker/internal/storage"
	"timetracker/internal/storage/models"
)

// AuditPageSize is the number of audit rows per page
const AuditPageSize = 50

// MaxAuditPage bounds the page number so the row offset fits in an int32
const MaxAuditPage = math.MaxInt32 / AuditPageSize

// AuditQuery filters the audit trail. Page starts at 1.
type AuditQuery struct {
	Action models.AuditAction
	UserID string
	From   *time.Time
	To     *time.Time
	Page   int
}

// AuditPage is one page of audit rows, newest first
type AuditPage struct {
	Logs     []models.AuditLog `json:"logs"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
	HasNext  bool              `json:"has_next"`
}

func snapshotTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339Nano)
	return &v
}

func optionalName(id *string, name string) *string {
	if id == nil {
		return nil
	}
	return &name
}

// snapshot serializes the state of an entry for the audit trail
func snapshot(e *models.TimeEntry) *models.Snapshot {
	if e == nil {
		return nil
	}
	start := e.StartTime
	return &models.Snapshot{
		ID:              e.ID,
		ProjectID:       e.ProjectID,
		ProjectName:     optionalName(e.ProjectID, e.ProjectName),
		TaskID:          e.TaskID,
		TaskName:        optionalName(e.TaskID, e.TaskName),
		Description:     e.Description,
		StartTime:       snapshotTime(&start),
		EndTime:         snapshotTime(e.EndTime),
		Billable:        e.Billable,
		HourlyRate:      e.HourlyRate.String(),
		Deleted:         e.Deleted,
		DeletedAt:       snapshotTime(e.DeletedAt),
		DurationMinutes: e.DurationMinutes(),
	}
}

// record appends one audit row inside the caller's transaction. An error
// here aborts the whole operation.
func (s *Service) record(ctx context.Context, q *storage.Queries, actor Actor, e *models.TimeEntry,
	action models.AuditAction, previous *models.Snapshot, notes string) error {
	log := &models.AuditLog{
		TimeEntryID:    e.ID,
		Action:         action,
		UserID:         actor.UserID,
		Timestamp:      s.now(),
		IPAddress:      actor.IP,
		UserAgent:      actor.UserAgent,
		SessionKey:     actor.SessionKey,
		PreviousValues: previous,
		CurrentValues:  snapshot(e),
		Notes:          notes,
	}
	return q.InsertAuditLog(ctx, log)
}

// QueryAudit returns one page of the audit trail, newest first
func (s *Service) QueryAudit(ctx context.Context, aq AuditQuery) (*AuditPage, error) {
	if aq.Page < 1 {
		aq.Page = 1
	}
	if aq.Page > MaxAuditPage {
		return nil, validationf("page must not exceed %d", MaxAuditPage)
	}
	if aq.From != nil && aq.To != nil && aq.To.Before(*aq.From) {
		return nil, validationf("date range end is before its start")
	}

	f := models.AuditFilter{
		Action: aq.Action,
		UserID: aq.UserID,
		From:   aq.From,
		To:     aq.To,
		Limit:  AuditPageSize,
		Offset: (aq.Page - 1) * AuditPageSize,
	}
	q := s.db.Queries()
	total, err := q.CountAuditLogs(ctx, f)
	if err != nil {
		return nil, translate(err)
	}
	logs, err := q.ListAuditLogs(ctx, f)
	if err != nil {
		return nil, translate(err)
	}
	return &AuditPage{
		Logs:     logs,
		Page:     aq.Page,
		PageSize: AuditPageSize,
		Total:    total,
		HasNext:  aq.Page*AuditPageSize < total,
	}, nil
}

// EntryHistory returns every audit row of one entry, newest first. It
// works for discarded entries too.
func (s *Service) EntryHistory(ctx context.Context, entryID string) ([]models.AuditLog, error) {
	logs, err := s.db.Queries().ListAuditLogs(ctx, models.AuditFilter{TimeEntryID: entryID})
	return logs, translate(err)
}
