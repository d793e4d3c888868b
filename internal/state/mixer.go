package state

import (
	"database/sql"
	"errors"
)

// MixerState is the saved master volume and equalizer bands (dB).
type MixerState struct {
	Volume float64
	Bass   float64
	Mid    float64
	Treble float64
}

// GetMixer returns the saved mixer settings, or nil if none were saved.
func (m *Manager) GetMixer() (*MixerState, error) {
	var s MixerState
	row := m.db.QueryRow(`SELECT volume, bass, mid, treble FROM mixer_state WHERE id = 1`)
	err := row.Scan(&s.Volume, &s.Bass, &s.Mid, &s.Treble)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means nothing saved yet
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveMixer persists the mixer settings.
func (m *Manager) SaveMixer(s MixerState) error {
	_, err := m.db.Exec(`
		INSERT INTO mixer_state (id, volume, bass, mid, treble)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			bass = excluded.bass,
			mid = excluded.mid,
			treble = excluded.treble
	`, s.Volume, s.Bass, s.Mid, s.Treble)
	return err
}
