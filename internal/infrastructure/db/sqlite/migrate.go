package sqlite

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clock_status (
		user_id     TEXT PRIMARY KEY,
		active      INTEGER NOT NULL DEFAULT 0,
		clocked_in  TEXT,
		clocked_out TEXT,
		version     INTEGER NOT NULL DEFAULT 0,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shift_records (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		start            TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL CHECK(duration_seconds >= 0),
		created_at       TEXT NOT NULL,
		UNIQUE(user_id, start)
	)`,
	`CREATE TABLE IF NOT EXISTS clock_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL,
		action      TEXT NOT NULL CHECK(action IN ('clock_in','clock_out')),
		at          TEXT NOT NULL,
		request_id  TEXT,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clock_events_user_at ON clock_events(user_id, at)`,
}

// Migrate runs all schema migrations. Every statement is idempotent, so it is
// safe to call on each start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
