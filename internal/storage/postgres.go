package storage

import (
	"database/sql"
	"time"

	"timetracker/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres initializes a PostgreSQL database through the pgx stdlib driver
func OpenPostgres(dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{sql: conn, dialect: postgresDialect}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", "driver", "pgx")
	return db, nil
}
