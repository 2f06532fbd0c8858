package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the shared Postgres drop schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDropsQuery := `
	CREATE TABLE IF NOT EXISTS drops (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		title TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		claimed_by TEXT[] NOT NULL DEFAULT '{}',
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_drops_vendor_expires
	ON drops(vendor_id, expires_at);
	`

	for i, stmt := range []string{createDropsQuery, createIndexQuery} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
