package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"timetracker/internal/storage/models"

	"github.com/shopspring/decimal"
)

const entrySelect = `SELECT e.id, e.project_id, e.task_id, e.description, e.start_time, e.end_time,
	e.billable, e.hourly_rate, e.deleted, e.deleted_at, COALESCE(p.name, ''), COALESCE(t.name, '')
	FROM time_entries e
	LEFT JOIN projects p ON p.id = e.project_id
	LEFT JOIN tasks t ON t.id = e.task_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.TimeEntry, error) {
	var (
		e                 models.TimeEntry
		projectID, taskID sql.NullString
		start             string
		end, deletedAt    sql.NullString
		billable, deleted int64
		rate              string
	)
	if err := row.Scan(&e.ID, &projectID, &taskID, &e.Description, &start, &end,
		&billable, &rate, &deleted, &deletedAt, &e.ProjectName, &e.TaskName); err != nil {
		return nil, mapError(err)
	}

	var err error
	if e.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if e.EndTime, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if e.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return nil, err
	}
	if e.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("parse hourly rate %q: %w", rate, err)
	}
	e.ProjectID = stringPtr(projectID)
	e.TaskID = stringPtr(taskID)
	e.Billable = billable != 0
	e.Deleted = deleted != 0
	return &e, nil
}

// InsertEntry inserts a new time entry
func (q *Queries) InsertEntry(ctx context.Context, e *models.TimeEntry) error {
	_, err := q.exec(ctx,
		`INSERT INTO time_entries (id, project_id, task_id, description, start_time, end_time, billable, hourly_rate, deleted, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		nullString(e.ProjectID),
		nullString(e.TaskID),
		e.Description,
		formatTime(e.StartTime),
		formatNullTime(e.EndTime),
		boolToInt(e.Billable),
		e.HourlyRate.String(),
		boolToInt(e.Deleted),
		formatNullTime(e.DeletedAt),
	)
	return err
}

// UpdateEntry writes every mutable field of an existing entry
func (q *Queries) UpdateEntry(ctx context.Context, e *models.TimeEntry) error {
	res, err := q.exec(ctx,
		`UPDATE time_entries SET project_id = ?, task_id = ?, description = ?, start_time = ?, end_time = ?,
		billable = ?, hourly_rate = ?, deleted = ?, deleted_at = ? WHERE id = ?`,
		nullString(e.ProjectID),
		nullString(e.TaskID),
		e.Description,
		formatTime(e.StartTime),
		formatNullTime(e.EndTime),
		boolToInt(e.Billable),
		e.HourlyRate.String(),
		boolToInt(e.Deleted),
		formatNullTime(e.DeletedAt),
		e.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// DeleteEntry physically removes an entry
func (q *Queries) DeleteEntry(ctx context.Context, id string) error {
	res, err := q.exec(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// GetEntry returns an entry by id, deleted or not
func (q *Queries) GetEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	return scanEntry(q.queryRow(ctx, entrySelect+` WHERE e.id = ?`, id))
}

// CountRunning counts running, non-deleted entries other than excludeID
func (q *Queries) CountRunning(ctx context.Context, excludeID string) (int, error) {
	var n int
	err := q.queryRow(ctx,
		`SELECT COUNT(*) FROM time_entries WHERE end_time IS NULL AND deleted = 0 AND id <> ?`,
		excludeID,
	).Scan(&n)
	return n, mapError(err)
}

// ListEntries returns entries matching the filter. Running and closed
// entries come newest start first, deleted ones newest deletion first.
func (q *Queries) ListEntries(ctx context.Context, f models.EntryFilter) ([]models.TimeEntry, error) {
	var (
		where []string
		args  []any
		order string
	)

	switch f.State {
	case models.StateRunning:
		where = append(where, "e.deleted = 0", "e.end_time IS NULL")
		order = "e.start_time DESC, e.id DESC"
	case models.StateClosed:
		where = append(where, "e.deleted = 0", "e.end_time IS NOT NULL")
		order = "e.start_time DESC, e.id DESC"
	case models.StateDeleted:
		where = append(where, "e.deleted = 1")
		order = "e.deleted_at DESC, e.id DESC"
	default:
		return nil, fmt.Errorf("unknown entry state %d", f.State)
	}

	if f.ProjectID != nil {
		where = append(where, "e.project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.From != nil {
		where = append(where, "e.start_time >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "e.start_time < ?")
		args = append(args, formatTime(*f.To))
	}

	query := entrySelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY " + order
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
