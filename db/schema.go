// ABOUTME: Database schema definitions
// ABOUTME: Creates the events table that mirrors remote calendar events
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	remote_event_id TEXT NOT NULL UNIQUE,
	summary TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
