// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	priority TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	action_url TEXT,
	action_label TEXT,
	metadata TEXT,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_created_at ON snapshot(created_at);
`

// InitSchema creates all tables if they don't exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
