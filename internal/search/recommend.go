package search

import (
	"strings"

	"github.com/llehouerou/tides/internal/catalog"
)

// Reference weights. All of them stack.
const (
	WeightSameAlbum  = 100
	WeightSameArtist = 80
	WeightSameGenre  = 60
	WeightNearYear   = 40

	yearWindow = 2
)

// Recommend ranks entries by similarity to ref, best first, ties in input
// order. ref itself is never recommended. limit <= 0 returns every match.
func Recommend(entries []catalog.Entry, ref catalog.Entry, limit int) []Scored {
	var scored []Scored
	for i := range entries {
		if entries[i].ID == ref.ID {
			continue
		}
		if s := referenceScore(&entries[i], &ref); s > 0 {
			scored = append(scored, Scored{Entry: entries[i], Score: s})
		}
	}
	sortScored(scored)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func referenceScore(e, ref *catalog.Entry) int {
	score := 0
	if sameText(e.Album, ref.Album) {
		score += WeightSameAlbum
	}
	if sameText(e.Artist, ref.Artist) {
		score += WeightSameArtist
	}
	if sameText(e.Genre, ref.Genre) {
		score += WeightSameGenre
	}
	if e.Year != 0 && ref.Year != 0 && abs(e.Year-ref.Year) <= yearWindow {
		score += WeightNearYear
	}
	return score
}

func sameText(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
