package state

import (
	"database/sql"
	"errors"

	"github.com/llehouerou/tides/internal/playlist"
)

// Mock is a test double for Manager.
type Mock struct {
	Session *playlist.Session
	Mixer   *MixerState
	Saves   int
	SaveErr error
	closed  bool
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveSession(s playlist.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	s.IDs = append([]int64(nil), s.IDs...)
	m.Session = &s
	return nil
}

func (m *Mock) LoadSession() (*playlist.Session, error) {
	return m.Session, nil
}

func (m *Mock) GetMixer() (*MixerState, error) {
	if m.Mixer == nil {
		return nil, nil //nolint:nilnil // mirrors Manager
	}
	s := *m.Mixer
	return &s, nil
}

func (m *Mock) SaveMixer(s MixerState) error {
	if m.closed {
		return errors.New("closed")
	}
	m.Mixer = &s
	return nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// IsClosed returns whether Close was called.
func (m *Mock) IsClosed() bool {
	return m.closed
}
