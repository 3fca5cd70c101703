package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Timestamps are unix nanoseconds so ordering and round-trips are exact.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS suggestions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL CHECK (name <> ''),
		message    TEXT    NOT NULL CHECK (message <> ''),
		category   TEXT    NOT NULL DEFAULT 'other',
		status     TEXT    NOT NULL DEFAULT 'new',
		is_pinned  INTEGER NOT NULL DEFAULT 0,
		priority   TEXT,
		likes      INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suggestion_comments (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		suggestion_id INTEGER NOT NULL REFERENCES suggestions(id) ON DELETE CASCADE,
		author        TEXT    NOT NULL CHECK (author <> ''),
		text          TEXT    NOT NULL CHECK (text <> ''),
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_suggestion_comments_suggestion
		ON suggestion_comments (suggestion_id, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT    NOT NULL,
		key_prefix   TEXT    NOT NULL,
		key_hash     TEXT    NOT NULL UNIQUE,
		created_at   INTEGER NOT NULL,
		last_used_at INTEGER
	)`,
}

// migrate runs all migrations in order inside one transaction.
func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}

	for i, m := range migrations {
		if _, err := tx.Exec(m); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("migration %d: %w (rollback: %v)", i, err, rbErr)
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return tx.Commit()
}
