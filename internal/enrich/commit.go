package enrich

import (
	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/tags"
)

// Diff returns the tag update that turns before into after.
// Only changed fields are set.
func Diff(before, after catalog.Entry) tags.Update {
	var u tags.Update
	if before.Title != after.Title {
		u.Title = &after.Title
	}
	if before.Artist != after.Artist {
		u.Artist = &after.Artist
	}
	if before.Album != after.Album {
		u.Album = &after.Album
	}
	if before.Genre != after.Genre {
		u.Genre = &after.Genre
	}
	if before.Year != after.Year {
		u.Year = &after.Year
	}
	if before.Lyrics != after.Lyrics {
		u.Lyrics = &after.Lyrics
	}
	return u
}

// Persist applies r to e and commits the changed fields to the entry's file.
// It returns the merged entry. A commit error leaves the file untouched but
// still returns the merged entry so callers can proceed in memory.
func Persist(e catalog.Entry, r *Result) (catalog.Entry, error) {
	merged := Apply(e, r)
	u := Diff(e, merged)
	if u.IsEmpty() {
		return merged, nil
	}
	return merged, tags.Commit(e.Path, u)
}
