package playlist

import (
	"fmt"
	"strings"

	"github.com/llehouerou/tides/internal/catalog"
)

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses "off", "all" or "one".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	}
	return RepeatOff, fmt.Errorf("unknown repeat mode %q", s)
}

// Session is the persisted form of a queue: identifiers only.
type Session struct {
	IDs     []int64    `json:"ids"`
	Cursor  int        `json:"cursor"`
	Shuffle bool       `json:"shuffle"`
	Repeat  RepeatMode `json:"repeat"`
}

// Restore rebuilds a queue from a session. Identifiers resolve cannot find
// are dropped and the cursor moves as if they had been removed.
func Restore(s Session, resolve func(id int64) (catalog.Entry, bool)) *Queue {
	q := NewQueue()
	q.shuffle = s.Shuffle
	q.repeat = s.Repeat

	cursor := s.Cursor
	entries := make([]catalog.Entry, 0, len(s.IDs))
	for i, id := range s.IDs {
		e, ok := resolve(id)
		if !ok {
			if i <= s.Cursor {
				cursor = max(cursor-1, 0)
			}
			continue
		}
		entries = append(entries, e)
	}

	q.playlist.Set(entries)
	switch {
	case len(entries) == 0:
		q.cursor = -1
	case s.Cursor < 0:
		q.cursor = -1
	default:
		q.cursor = cursor
	}
	return q
}
