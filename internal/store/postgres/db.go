// Package postgres implements the weather and audit stores on PostgreSQL
// using database/sql with the lib/pq driver. The readings table carries a
// unique index on (city, country_code, date); duplicate inserts are absorbed
// with ON CONFLICT DO NOTHING so a dedup race never fails a batch.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" driver
)

// Open connects to PostgreSQL, verifies the connection, and applies pool
// settings suited to the service's low-concurrency request pattern.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
