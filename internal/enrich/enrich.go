// Package enrich defines the best-effort metadata enrichment contract.
//
// An enrichment service may correct metadata, supply lyrics or a cover image.
// It may also fail, time out, or return nothing at all; callers never depend
// on its success.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/llehouerou/tides/internal/catalog"
)

// Query identifies the track to enrich.
type Query struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// QueryFor builds a Query from a catalog entry.
func QueryFor(e catalog.Entry) Query {
	return Query{
		Title:    e.Title,
		Artist:   e.Artist,
		Album:    e.Album,
		Duration: e.Duration,
	}
}

// Valid reports whether the query carries enough to look anything up.
func (q Query) Valid() bool {
	return strings.TrimSpace(q.Title) != "" && strings.TrimSpace(q.Artist) != ""
}

// Result is a partial enrichment. Empty fields mean "no opinion".
type Result struct {
	Title  string
	Artist string
	Album  string

	SyncedLyrics string
	PlainLyrics  string

	Cover     []byte
	CoverMIME string
}

// Lyrics returns the best lyric text in the result, preferring synced lyrics.
func (r *Result) Lyrics() string {
	if r == nil {
		return ""
	}
	if r.SyncedLyrics != "" {
		return r.SyncedLyrics
	}
	return r.PlainLyrics
}

// Empty reports whether the result carries nothing usable.
func (r *Result) Empty() bool {
	return r == nil ||
		(r.Title == "" && r.Artist == "" && r.Album == "" &&
			r.SyncedLyrics == "" && r.PlainLyrics == "" && len(r.Cover) == 0)
}

// Service looks up enrichment data for a track.
// A nil Result with a nil error means nothing was found.
type Service interface {
	Lookup(ctx context.Context, q Query) (*Result, error)
}

// Noop is a Service that never finds anything.
type Noop struct{}

// Lookup implements Service.
func (Noop) Lookup(context.Context, Query) (*Result, error) {
	return nil, nil //nolint:nilnil // nothing found is not an error
}

// Apply merges a partial result into an entry and returns the merged copy.
// Metadata fields overwrite only when the result has a non-empty value;
// lyrics are filled only when the entry has none. Apply never fails.
func Apply(e catalog.Entry, r *Result) catalog.Entry {
	if r == nil {
		return e
	}
	if v := strings.TrimSpace(r.Title); v != "" {
		e.Title = v
	}
	if v := strings.TrimSpace(r.Artist); v != "" {
		e.Artist = v
	}
	if v := strings.TrimSpace(r.Album); v != "" {
		e.Album = v
	}
	if strings.TrimSpace(e.Lyrics) == "" {
		e.Lyrics = r.Lyrics()
	}
	return e
}
