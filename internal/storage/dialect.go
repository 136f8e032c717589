package storage

import (
	"database/sql"
	"strconv"
	"strings"
)

// dialect captures the differences between the supported SQL engines.
// Queries are written with ? placeholders and rebound per engine.
type dialect struct {
	name      string
	schema    []string
	txOptions *sql.TxOptions
	rebind    func(string) string
}

// Tables shared by both engines. Timestamps are stored as fixed-width UTC
// text so that lexical comparison matches chronological order.
var commonSchema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#03a9f4',
		archived INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		project_id TEXT REFERENCES projects(id) ON DELETE RESTRICT,
		task_id TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT,
		billable INTEGER NOT NULL DEFAULT 1,
		hourly_rate TEXT NOT NULL DEFAULT '0',
		deleted INTEGER NOT NULL DEFAULT 0,
		deleted_at TEXT,
		CHECK (end_time IS NULL OR end_time >= start_time),
		CHECK ((deleted = 0 AND deleted_at IS NULL) OR (deleted = 1 AND deleted_at IS NOT NULL))
	)`,
	// At most one running, non-deleted entry across the whole table
	`CREATE UNIQUE INDEX IF NOT EXISTS time_entries_single_running
		ON time_entries (deleted) WHERE end_time IS NULL AND deleted = 0`,
	`CREATE INDEX IF NOT EXISTS time_entries_start_time ON time_entries (start_time)`,
}

var sqliteDialect = dialect{
	name: "sqlite3",
	schema: append(append([]string{}, commonSchema...),
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time_entry_id TEXT NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT,
			timestamp TEXT NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			session_key TEXT NOT NULL DEFAULT '',
			previous_values TEXT,
			current_values TEXT,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS audit_logs_time_entry ON audit_logs (time_entry_id)`,
		`CREATE TRIGGER IF NOT EXISTS audit_logs_no_update BEFORE UPDATE ON audit_logs
		BEGIN
			SELECT RAISE(ABORT, 'audit_logs is append-only');
		END`,
		`CREATE TRIGGER IF NOT EXISTS audit_logs_no_delete BEFORE DELETE ON audit_logs
		BEGIN
			SELECT RAISE(ABORT, 'audit_logs is append-only');
		END`,
	),
	rebind: func(q string) string { return q },
}

var postgresDialect = dialect{
	name: "pgx",
	schema: append(append([]string{}, commonSchema...),
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			time_entry_id TEXT NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT,
			timestamp TEXT NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			session_key TEXT NOT NULL DEFAULT '',
			previous_values TEXT,
			current_values TEXT,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS audit_logs_time_entry ON audit_logs (time_entry_id)`,
		`CREATE OR REPLACE FUNCTION audit_logs_append_only() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'audit_logs is append-only' USING ERRCODE = 'integrity_constraint_violation';
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS audit_logs_append_only ON audit_logs`,
		`CREATE TRIGGER audit_logs_append_only BEFORE UPDATE OR DELETE ON audit_logs
			FOR EACH ROW EXECUTE FUNCTION audit_logs_append_only()`,
	),
	txOptions: &sql.TxOptions{Isolation: sql.LevelSerializable},
	rebind:    rebindDollar,
}

// rebindDollar rewrites ? placeholders into PostgreSQL's $1, $2, ...
// A ? inside a single-quoted literal is left alone.
func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	quoted := false
	for i := 0; i < len(q); i++ {
		if q[i] == '\'' {
			// '' inside a literal toggles twice and stays quoted
			quoted = !quoted
		}
		if q[i] == '?' && !quoted {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
