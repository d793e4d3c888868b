package state

import (
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/tides/internal/db"
	"github.com/llehouerou/tides/internal/playlist"
)

// LoadSession returns the saved queue session, or nil if none was saved.
func (m *Manager) LoadSession() (*playlist.Session, error) {
	return loadSession(m.db)
}

// SaveSession replaces the saved queue session.
func (m *Manager) SaveSession(s playlist.Session) error {
	return saveSession(m.db, s)
}

func loadSession(db *sql.DB) (*playlist.Session, error) {
	var s playlist.Session
	row := db.QueryRow(`SELECT cursor, repeat_mode, shuffle FROM queue_state WHERE id = 1`)
	err := row.Scan(&s.Cursor, &s.Repeat, &s.Shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved session
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT entry_id FROM queue_entries ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.IDs = []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		s.IDs = append(s.IDs, id)
	}
	return &s, rows.Err()
}

func saveSession(sqlDB *sql.DB, s playlist.Session) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_entries`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, cursor, repeat_mode, shuffle)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				cursor = excluded.cursor,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle
		`, s.Cursor, int(s.Repeat), s.Shuffle)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_entries (position, entry_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range s.IDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
