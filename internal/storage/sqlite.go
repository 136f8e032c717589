package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timetracker/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the connection pool together with the SQL dialect in use
type DB struct {
	sql     *sql.DB
	dialect dialect
}

// Open opens the database for the given driver name ("sqlite3" or "pgx").
// For sqlite3 the source is a file path, for pgx a connection string.
func Open(driver, source string) (*DB, error) {
	switch driver {
	case "sqlite3":
		return OpenSQLite(source)
	case "pgx":
		return OpenPostgres(source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenSQLite initializes the SQLite database
func OpenSQLite(dbPath string) (*DB, error) {
	// Writers take the lock at BEGIN so read-validate-write sequences serialize
	dsn := dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=5000&_txlock=immediate"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	// SQLite doesn't support multiple writers, but we can optimize for concurrent reads
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{sql: conn, dialect: sqliteDialect}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", "driver", "sqlite3", "path", dbPath)
	return db, nil
}

func (db *DB) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Test the connection
	if err := db.sql.PingContext(ctx); err != nil {
		return err
	}
	return db.createTables(ctx)
}

// createTables creates the necessary database tables
func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range db.dialect.schema {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Ping checks the database connection
func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.sql == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.sql.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db != nil && db.sql != nil {
		return db.sql.Close()
	}
	return nil
}

// Queries returns a query set bound to the connection pool, for reads that
// do not need a transaction.
func (db *DB) Queries() *Queries {
	return &Queries{q: db.sql, d: db.dialect}
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, including when fn panics.
func (db *DB) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := db.sql.BeginTx(ctx, db.dialect.txOptions)
	if err != nil {
		return mapError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			rollback(tx)
			panic(p)
		}
		if err != nil {
			rollback(tx)
		}
	}()

	if err = fn(&Queries{q: tx, d: db.dialect}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("Failed to roll back transaction", "error", err)
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every statement the application runs against the store
type Queries struct {
	q querier
	d dialect
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.q.ExecContext(ctx, q.d.rebind(query), args...)
	return res, mapError(err)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.q.QueryContext(ctx, q.d.rebind(query), args...)
	return rows, mapError(err)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.d.rebind(query), args...)
}
