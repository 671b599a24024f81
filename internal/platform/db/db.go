package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to Postgres. The pool is sized for the store's write
// pattern: chunked order inserts from one generation run at a time
// plus light read traffic.
func Open(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open order database: %w", err)
	}

	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(4)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("verify order database connection: %w", err)
	}

	return conn, nil
}
