// Package queue owns the playback session: every mutation is persisted and
// then announced to subscribers, synchronously and in mutation order.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/playlist"
)

// ErrPersist wraps store failures returned from mutations. The in-memory
// session has already changed when it is returned.
var ErrPersist = errors.New("persist queue")

const historySize = 50

// Store saves and loads the session.
type Store interface {
	SaveSession(playlist.Session) error
	LoadSession() (*playlist.Session, error)
}

// Snapshot is an immutable view of the session handed to subscribers.
type Snapshot struct {
	Entries []catalog.Entry
	Cursor  int
	Shuffle bool
	Repeat  playlist.RepeatMode
}

// Current returns the entry under the cursor, or nil.
func (s Snapshot) Current() *catalog.Entry {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return nil
	}
	e := s.Entries[s.Cursor]
	return &e
}

// Manager is the queue manager. Subscribers run on the mutating goroutine
// while the manager is locked and must not call back into it.
type Manager struct {
	mu      sync.Mutex
	q       *playlist.Queue
	history *playlist.History
	store   Store
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// New creates an empty manager persisting through store.
func New(store Store) *Manager {
	m := &Manager{
		q:       playlist.NewQueue(),
		history: playlist.NewHistory(historySize),
		store:   store,
	}
	m.history.Push(m.q)
	return m
}

// Load replaces the session with the stored one. Identifiers resolve does
// not know are dropped. A missing stored session leaves the queue empty.
func (m *Manager) Load(resolve func(id int64) (catalog.Entry, bool)) error {
	s, err := m.store.LoadSession()
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.q = playlist.NewQueue()
	} else {
		m.q = playlist.Restore(*s, resolve)
	}
	m.history = playlist.NewHistory(historySize)
	m.history.Push(m.q)
	m.notify()
	return nil
}

// Subscribe registers fn and immediately calls it with the current state.
// The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	fn(m.snapshot())

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Current returns the entry under the cursor, or nil.
func (m *Manager) Current() *catalog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Current()
}

// PeekNext returns the entry Next would move to, without moving.
func (m *Manager) PeekNext() *catalog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.PeekNext()
}

// Len returns the number of queued entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Len()
}

// SetQueue replaces the session. The cursor is not clamped.
func (m *Manager) SetQueue(entries []catalog.Entry, start int) error {
	return m.mutate(true, func(q *playlist.Queue) bool {
		q.Set(entries, start)
		return true
	})
}

// AddNext inserts e right after the cursor.
func (m *Manager) AddNext(e catalog.Entry) error {
	return m.mutate(true, func(q *playlist.Queue) bool {
		q.AddNext(e)
		return true
	})
}

// AddToEnd appends e.
func (m *Manager) AddToEnd(e catalog.Entry) error {
	return m.mutate(true, func(q *playlist.Queue) bool {
		q.AddToEnd(e)
		return true
	})
}

// Next moves the cursor forward with wrap-around and returns the new
// current entry, nil when the queue is empty.
func (m *Manager) Next() (*catalog.Entry, error) {
	var cur *catalog.Entry
	err := m.mutate(false, func(q *playlist.Queue) bool {
		cur = q.Next()
		return cur != nil
	})
	return cur, err
}

// Prev moves the cursor back with wrap-around.
func (m *Manager) Prev() (*catalog.Entry, error) {
	var cur *catalog.Entry
	err := m.mutate(false, func(q *playlist.Queue) bool {
		cur = q.Prev()
		return cur != nil
	})
	return cur, err
}

// Reorder replaces the sequence with a permutation of itself. The cursor
// keeps its index.
func (m *Manager) Reorder(newOrder []catalog.Entry) error {
	var rerr error
	err := m.mutate(true, func(q *playlist.Queue) bool {
		rerr = q.Reorder(newOrder)
		return rerr == nil
	})
	if rerr != nil {
		return rerr
	}
	return err
}

// JumpTo sets the cursor. Out of range is a no-op and notifies nobody.
func (m *Manager) JumpTo(index int) error {
	return m.mutate(false, func(q *playlist.Queue) bool {
		return q.JumpTo(index)
	})
}

// RemoveFromQueue removes the entry at index. Out of range is a no-op.
func (m *Manager) RemoveFromQueue(index int) error {
	return m.mutate(true, func(q *playlist.Queue) bool {
		return q.RemoveAt(index)
	})
}

// Clear empties the session.
func (m *Manager) Clear() error {
	return m.mutate(true, func(q *playlist.Queue) bool {
		q.Clear()
		return true
	})
}

// SetShuffle sets the shuffle flag.
func (m *Manager) SetShuffle(on bool) error {
	return m.mutate(false, func(q *playlist.Queue) bool {
		q.SetShuffle(on)
		return true
	})
}

// SetRepeat sets the repeat mode.
func (m *Manager) SetRepeat(mode playlist.RepeatMode) error {
	return m.mutate(false, func(q *playlist.Queue) bool {
		q.SetRepeat(mode)
		return true
	})
}

// Undo restores the previous queue content. Returns false if there is none.
func (m *Manager) Undo() (bool, error) {
	return m.travel(m.history.Undo)
}

// Redo re-applies an undone change. Returns false if there is none.
func (m *Manager) Redo() (bool, error) {
	return m.travel(m.history.Redo)
}

func (m *Manager) travel(step func() (playlist.Snapshot, bool)) (bool, error) {
	var ok bool
	err := m.mutate(false, func(q *playlist.Queue) bool {
		var snap playlist.Snapshot
		snap, ok = step()
		if ok {
			q.Set(snap.Entries, snap.Cursor)
		}
		return ok
	})
	return ok, err
}

// mutate applies fn under the lock. When fn reports a change the session is
// persisted and subscribers are notified; structural changes are recorded
// for undo.
func (m *Manager) mutate(structural bool, fn func(q *playlist.Queue) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !fn(m.q) {
		return nil
	}
	if structural {
		m.history.Push(m.q)
	}

	var err error
	if serr := m.store.SaveSession(m.q.Session()); serr != nil {
		err = fmt.Errorf("%w: %w", ErrPersist, serr)
	}
	m.notify()
	return err
}

func (m *Manager) notify() {
	snap := m.snapshot()
	for _, s := range m.subs {
		s.fn(snap)
	}
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		Entries: m.q.Entries(),
		Cursor:  m.q.Cursor(),
		Shuffle: m.q.Shuffle(),
		Repeat:  m.q.Repeat(),
	}
}
