// Package search ranks catalog entries for a text query or a reference entry.
package search

import (
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/llehouerou/tides/internal/catalog"
)

// Query weights. Title weights are exclusive of each other, the rest stack.
const (
	WeightTitleExact     = 100
	WeightTitlePrefix    = 80
	WeightTitleSubstring = 60
	WeightArtistExact    = 70
	WeightArtistSubstr   = 40
	WeightAlbumSubstring = 30
	WeightGenreSubstring = 20
)

const (
	similarCount = 5
	groupLimit   = 10
)

var (
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, "")
	s = multipleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Scored is an entry with its score.
type Scored struct {
	Entry catalog.Entry
	Score int
}

// Results groups the output of a single scoring pass.
type Results struct {
	Top        *Scored
	Similar    []Scored // ranks 1 to 5
	SameArtist []Scored // other matches by the top result's artist
	SameGenre  []Scored // other matches in the top result's genre
	Recent     []catalog.Entry
	Scored     []Scored // every match, best first
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return r.Top == nil
}

// Search scores entries against query. Ties keep input order.
// An empty query returns empty results.
func Search(entries []catalog.Entry, query string) Results {
	q := Normalize(query)
	if q == "" {
		return Results{}
	}

	scored := make([]Scored, 0, len(entries))
	for i := range entries {
		if s := queryScore(&entries[i], q); s > 0 {
			scored = append(scored, Scored{Entry: entries[i], Score: s})
		}
	}
	sortScored(scored)

	res := Results{Scored: scored}
	if len(scored) == 0 {
		res.Recent = recent(entries)
		return res
	}

	top := scored[0]
	res.Top = &top
	res.Similar = lo.Slice(scored, 1, 1+similarCount)

	rest := scored[1:]
	res.SameArtist = limit(lo.Filter(rest, func(s Scored, _ int) bool {
		return top.Entry.Artist != "" && strings.EqualFold(s.Entry.Artist, top.Entry.Artist)
	}))
	res.SameGenre = limit(lo.Filter(rest, func(s Scored, _ int) bool {
		return top.Entry.Genre != "" && strings.EqualFold(s.Entry.Genre, top.Entry.Genre)
	}))
	res.Recent = recent(lo.Map(scored, func(s Scored, _ int) catalog.Entry { return s.Entry }))
	return res
}

func queryScore(e *catalog.Entry, q string) int {
	score := 0

	title := Normalize(e.Title)
	switch {
	case title == q:
		score += WeightTitleExact
	case strings.HasPrefix(title, q):
		score += WeightTitlePrefix
	case strings.Contains(title, q):
		score += WeightTitleSubstring
	}

	artist := Normalize(e.Artist)
	switch {
	case artist == q:
		score += WeightArtistExact
	case strings.Contains(artist, q):
		score += WeightArtistSubstr
	}

	if strings.Contains(Normalize(e.Album), q) {
		score += WeightAlbumSubstring
	}
	if strings.Contains(Normalize(e.Genre), q) {
		score += WeightGenreSubstring
	}
	return score
}

// recent returns up to groupLimit entries, most recently added first.
func recent(entries []catalog.Entry) []catalog.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b catalog.Entry) int {
		return b.AddedAt.Compare(a.AddedAt)
	})
	return lo.Slice(out, 0, groupLimit)
}

func sortScored(s []Scored) {
	slices.SortStableFunc(s, func(a, b Scored) int {
		return b.Score - a.Score
	})
}

func limit(s []Scored) []Scored {
	return lo.Slice(s, 0, groupLimit)
}
