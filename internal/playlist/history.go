package playlist

import "github.com/llehouerou/tides/internal/catalog"

// Snapshot is a saved queue content and cursor.
type Snapshot struct {
	Entries []catalog.Entry
	Cursor  int
}

// History maintains queue states for undo/redo.
type History struct {
	states  []Snapshot
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewHistory creates a new history with the given maximum size.
func NewHistory(maxSize int) *History {
	return &History{
		states:  make([]Snapshot, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push saves a snapshot of q.
// Clears any redo states and trims if over limit.
func (h *History) Push(q *Queue) {
	snap := Snapshot{Entries: q.Entries(), Cursor: q.Cursor()}

	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, snap)
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = h.states[excess:]
		h.current -= excess
	}
}

// Undo returns the previous state.
// Returns false if nothing to undo.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.current--
	return h.at(h.current), true
}

// Redo returns the next state.
// Returns false if nothing to redo.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.current++
	return h.at(h.current), true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

func (h *History) at(i int) Snapshot {
	s := h.states[i]
	entries := make([]catalog.Entry, len(s.Entries))
	copy(entries, s.Entries)
	return Snapshot{Entries: entries, Cursor: s.Cursor}
}
