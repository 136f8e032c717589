package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"timetracker/internal/logger"
	"timetracker/internal/storage/models"
)

// The audit log is append-only: this file has no update or delete statement
// for audit_logs and the schema rejects both.

// InsertAuditLog inserts a new audit log entry and sets its ID
func (q *Queries) InsertAuditLog(ctx context.Context, log *models.AuditLog) error {
	previous, err := marshalSnapshot(log.PreviousValues)
	if err != nil {
		return err
	}
	current, err := marshalSnapshot(log.CurrentValues)
	if err != nil {
		return err
	}

	err = q.queryRow(ctx,
		`INSERT INTO audit_logs (time_entry_id, action, user_id, timestamp, ip_address, user_agent, session_key, previous_values, current_values, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		log.TimeEntryID,
		string(log.Action),
		nullString(log.UserID),
		formatTime(log.Timestamp),
		log.IPAddress,
		log.UserAgent,
		log.SessionKey,
		previous,
		current,
		log.Notes,
	).Scan(&log.ID)
	if err != nil {
		logger.Error("Failed to insert audit log", "error", err, "time_entry_id", log.TimeEntryID)
		return mapError(err)
	}
	return nil
}

func auditWhere(f models.AuditFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.TimeEntryID != "" {
		where = append(where, "time_entry_id = ?")
		args = append(args, f.TimeEntryID)
	}
	if f.From != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "timestamp < ?")
		args = append(args, formatTime(*f.To))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// CountAuditLogs counts audit logs matching the filter, ignoring paging
func (q *Queries) CountAuditLogs(ctx context.Context, f models.AuditFilter) (int, error) {
	where, args := auditWhere(f)
	var n int
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&n)
	return n, mapError(err)
}

// ListAuditLogs retrieves audit logs newest first with pagination
func (q *Queries) ListAuditLogs(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, error) {
	where, args := auditWhere(f)
	query := `SELECT id, time_entry_id, action, user_id, timestamp, ip_address, user_agent, session_key, previous_values, current_values, notes
		FROM audit_logs` + where + ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var (
			log               models.AuditLog
			action, timestamp string
			userID            sql.NullString
			previous, current sql.NullString
		)
		if err := rows.Scan(
			&log.ID,
			&log.TimeEntryID,
			&action,
			&userID,
			&timestamp,
			&log.IPAddress,
			&log.UserAgent,
			&log.SessionKey,
			&previous,
			&current,
			&log.Notes,
		); err != nil {
			return nil, mapError(err)
		}

		log.Action = models.AuditAction(action)
		log.UserID = stringPtr(userID)
		if log.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		if log.PreviousValues, err = unmarshalSnapshot(previous); err != nil {
			return nil, err
		}
		if log.CurrentValues, err = unmarshalSnapshot(current); err != nil {
			return nil, err
		}

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return logs, nil
}

func marshalSnapshot(s *models.Snapshot) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalSnapshot(s sql.NullString) (*models.Snapshot, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(s.String), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
