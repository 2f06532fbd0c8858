package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createClaimsQuery := `
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		drop_id TEXT NOT NULL,
		vendor_id TEXT NOT NULL,
		drop_title TEXT NOT NULL,
		code TEXT NOT NULL,
		claimed_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		expired_at INTEGER
	);
	`

	createDropsQuery := `
	CREATE TABLE IF NOT EXISTS drops (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		title TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		claimed_by TEXT NOT NULL DEFAULT '[]',
		expires_at INTEGER NOT NULL
	);
	`

	createUserIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_claims_user_claimed_at
	ON claims(user_id, claimed_at);
	`

	createStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_claims_status
	ON claims(status);
	`

	statements := []string{
		createClaimsQuery,
		createDropsQuery,
		createUserIndexQuery,
		createStatusIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
