// Package playlist holds the pure playback session: an ordered list of
// catalog entries, a cursor, and the shuffle and repeat flags.
package playlist

import "github.com/llehouerou/tides/internal/catalog"

// Playlist is an ordered list of catalog entries.
type Playlist struct {
	entries []catalog.Entry
}

// New creates a playlist holding a copy of entries.
func New(entries ...catalog.Entry) *Playlist {
	p := &Playlist{}
	p.Add(entries...)
	return p
}

// Add appends entries to the playlist.
func (p *Playlist) Add(entries ...catalog.Entry) {
	p.entries = append(p.entries, entries...)
}

// Insert places entries at index, shifting the rest right.
// An index past the end appends.
func (p *Playlist) Insert(index int, entries ...catalog.Entry) {
	if index < 0 {
		index = 0
	}
	if index >= len(p.entries) {
		p.Add(entries...)
		return
	}
	out := make([]catalog.Entry, 0, len(p.entries)+len(entries))
	out = append(out, p.entries[:index]...)
	out = append(out, entries...)
	out = append(out, p.entries[index:]...)
	p.entries = out
}

// Remove removes the entry at index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.entries) {
		return false
	}
	p.entries = append(p.entries[:index], p.entries[index+1:]...)
	return true
}

// Set replaces the content of the playlist.
func (p *Playlist) Set(entries []catalog.Entry) {
	p.entries = append(p.entries[:0:0], entries...)
}

// Clear removes all entries.
func (p *Playlist) Clear() {
	p.entries = nil
}

// Entries returns a copy of all entries.
func (p *Playlist) Entries() []catalog.Entry {
	result := make([]catalog.Entry, len(p.entries))
	copy(result, p.entries)
	return result
}

// Entry returns the entry at index, or nil if out of bounds.
func (p *Playlist) Entry(index int) *catalog.Entry {
	if index < 0 || index >= len(p.entries) {
		return nil
	}
	e := p.entries[index]
	return &e
}

// IDs returns the identifiers in order.
func (p *Playlist) IDs() []int64 {
	ids := make([]int64, len(p.entries))
	for i := range p.entries {
		ids[i] = p.entries[i].ID
	}
	return ids
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.entries)
}

// Move moves the entry at fromIndex to toIndex.
// Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.entries) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.entries) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	e := p.entries[fromIndex]
	p.entries = append(p.entries[:fromIndex], p.entries[fromIndex+1:]...)
	p.entries = append(p.entries[:toIndex], append([]catalog.Entry{e}, p.entries[toIndex:]...)...)
	return true
}
