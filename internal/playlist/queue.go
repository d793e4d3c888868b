package playlist

import (
	"errors"

	"github.com/llehouerou/tides/internal/catalog"
)

// ErrNotPermutation is returned by Reorder when the new order does not hold
// exactly the entries already queued.
var ErrNotPermutation = errors.New("reorder must keep the same entries")

// Queue wraps a Playlist with a cursor and playback flags.
type Queue struct {
	playlist *Playlist
	cursor   int // -1 if nothing selected
	shuffle  bool
	repeat   RepeatMode
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		playlist: New(),
		cursor:   -1,
	}
}

// Current returns the entry under the cursor, or nil if none.
func (q *Queue) Current() *catalog.Entry {
	return q.playlist.Entry(q.cursor)
}

// Cursor returns the cursor position (-1 if none).
func (q *Queue) Cursor() int {
	return q.cursor
}

// Entries returns a copy of the queued entries.
func (q *Queue) Entries() []catalog.Entry {
	return q.playlist.Entries()
}

// Entry returns the entry at index, or nil if out of bounds.
func (q *Queue) Entry(index int) *catalog.Entry {
	return q.playlist.Entry(index)
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue holds no entries.
func (q *Queue) IsEmpty() bool {
	return q.playlist.Len() == 0
}

// Shuffle reports whether shuffle is on.
func (q *Queue) Shuffle() bool { return q.shuffle }

// Repeat returns the repeat mode.
func (q *Queue) Repeat() RepeatMode { return q.repeat }

// SetShuffle sets the shuffle flag.
func (q *Queue) SetShuffle(on bool) { q.shuffle = on }

// SetRepeat sets the repeat mode.
func (q *Queue) SetRepeat(m RepeatMode) { q.repeat = m }

// Set replaces the queue and places the cursor at start.
// The cursor is not clamped: an out-of-range start leaves Current nil.
func (q *Queue) Set(entries []catalog.Entry, start int) {
	q.playlist.Set(entries)
	if len(entries) == 0 {
		q.cursor = -1
		return
	}
	q.cursor = start
}

// AddNext inserts e right after the cursor.
func (q *Queue) AddNext(e catalog.Entry) {
	at := q.cursor + 1
	if !q.valid(q.cursor) {
		at = q.playlist.Len()
	}
	q.playlist.Insert(at, e)
}

// AddToEnd appends e.
func (q *Queue) AddToEnd(e catalog.Entry) {
	q.playlist.Add(e)
}

// Next moves the cursor one step forward, wrapping to the start.
// Returns nil if the queue is empty.
func (q *Queue) Next() *catalog.Entry {
	n := q.playlist.Len()
	if n == 0 {
		return nil
	}
	if !q.valid(q.cursor) {
		q.cursor = 0
	} else {
		q.cursor = (q.cursor + 1) % n
	}
	return q.Current()
}

// Prev moves the cursor one step back, wrapping to the end.
// Returns nil if the queue is empty.
func (q *Queue) Prev() *catalog.Entry {
	n := q.playlist.Len()
	if n == 0 {
		return nil
	}
	if !q.valid(q.cursor) {
		q.cursor = n - 1
	} else {
		q.cursor = (q.cursor - 1 + n) % n
	}
	return q.Current()
}

// PeekNext returns the entry after the cursor with wrap-around, without
// moving. Returns nil if the queue is empty.
func (q *Queue) PeekNext() *catalog.Entry {
	n := q.playlist.Len()
	if n == 0 {
		return nil
	}
	if !q.valid(q.cursor) {
		return q.playlist.Entry(0)
	}
	return q.playlist.Entry((q.cursor + 1) % n)
}

// HasNext returns true if there's an entry after the cursor without wrapping.
func (q *Queue) HasNext() bool {
	return q.cursor < q.playlist.Len()-1
}

// Reorder replaces the sequence with newOrder, which must hold the same
// entries. The cursor keeps its index.
func (q *Queue) Reorder(newOrder []catalog.Entry) error {
	if !samePermutation(q.playlist.IDs(), newOrder) {
		return ErrNotPermutation
	}
	q.playlist.Set(newOrder)
	return nil
}

// JumpTo sets the cursor. Returns false and does nothing if index is out of range.
func (q *Queue) JumpTo(index int) bool {
	if !q.valid(index) {
		return false
	}
	q.cursor = index
	return true
}

// RemoveAt removes the entry at index. Removing at or before the cursor
// moves the cursor back by one, clamped to zero.
// Returns false if index is out of bounds.
func (q *Queue) RemoveAt(index int) bool {
	if !q.playlist.Remove(index) {
		return false
	}
	switch {
	case q.playlist.Len() == 0:
		q.cursor = -1
	case index <= q.cursor:
		q.cursor = max(q.cursor-1, 0)
	}
	return true
}

// Clear removes all entries and resets the cursor.
func (q *Queue) Clear() {
	q.playlist.Clear()
	q.cursor = -1
}

// Session returns the persisted form of the queue.
func (q *Queue) Session() Session {
	return Session{
		IDs:     q.playlist.IDs(),
		Cursor:  q.cursor,
		Shuffle: q.shuffle,
		Repeat:  q.repeat,
	}
}

func (q *Queue) valid(index int) bool {
	return index >= 0 && index < q.playlist.Len()
}

func samePermutation(ids []int64, entries []catalog.Entry) bool {
	if len(ids) != len(entries) {
		return false
	}
	counts := make(map[int64]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}
	for i := range entries {
		counts[entries[i].ID]--
		if counts[entries[i].ID] < 0 {
			return false
		}
	}
	return true
}
