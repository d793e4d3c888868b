package state

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS catalog_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			track_number INTEGER,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			replay_gain REAL,
			play_count INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			lyrics TEXT NOT NULL DEFAULT '',
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_artist ON catalog_entries(artist);
		CREATE INDEX IF NOT EXISTS idx_entries_added_at ON catalog_entries(added_at);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			cursor INTEGER NOT NULL DEFAULT -1,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_entries (
			position INTEGER PRIMARY KEY,
			entry_id INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS mixer_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			bass REAL NOT NULL DEFAULT 0,
			mid REAL NOT NULL DEFAULT 0,
			treble REAL NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS smart_playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			rules TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_smart_playlists_name ON smart_playlists(name COLLATE NOCASE);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add lyrics column if missing
	_, _ = db.Exec(`ALTER TABLE catalog_entries ADD COLUMN lyrics TEXT NOT NULL DEFAULT ''`)

	return nil
}
