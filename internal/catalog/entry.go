// Package catalog defines the catalog entry shared by the playback core.
//
// Entries are owned by the library store. The core only reads them and proposes
// play-count, favorite and lyric mutations back through Mutator.
package catalog

import (
	"math"
	"time"
)

// Entry is a single song in the catalog.
type Entry struct {
	ID       int64
	Title    string
	Artist   string
	Album    string
	Genre    string
	Year     int
	Duration time.Duration
	Path     string // playback resource locator

	// ReplayGain is the track gain adjustment in dB, nil when the file carries none.
	ReplayGain *float64

	PlayCount int
	Favorite  bool
	Lyrics    string
	AddedAt   time.Time
}

// GainFactor converts the replay gain adjustment to a linear factor.
// Returns 1.0 when the entry has no replay gain.
func (e *Entry) GainFactor() float64 {
	if e.ReplayGain == nil {
		return 1.0
	}
	return math.Pow(10, *e.ReplayGain/20)
}

// Mutator receives mutations proposed by the core.
type Mutator interface {
	IncrementPlayCount(id int64) error
	SetFavorite(id int64, favorite bool) error
	SetLyrics(id int64, lyrics string) error
}

// Index maps entry IDs to their position in a slice.
func Index(entries []Entry) map[int64]int {
	idx := make(map[int64]int, len(entries))
	for i := range entries {
		idx[entries[i].ID] = i
	}
	return idx
}
