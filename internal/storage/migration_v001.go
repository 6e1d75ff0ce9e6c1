package storage

import "database/sql"

// migrateV001 creates the events schema. Every statement uses IF NOT
// EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// Dates are YYYY-MM-DD text so comparisons and ordering are
		// lexicographic and index-friendly.
		`CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			uid        TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL,
			location   TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT 'manual',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_end_date   ON events(end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_span       ON events(start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_source     ON events(source)`,

		// Imports are idempotent per (source, uid); manual events have no uid.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_source_uid
			ON events(source, uid) WHERE uid != ''`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
