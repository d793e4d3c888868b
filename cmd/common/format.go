package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/library"
)

// FormatDuration renders d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// EntryLine renders an entry on one line: id, artist, title, album, length.
func EntryLine(e catalog.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6d  ", e.ID)
	if e.Artist != "" {
		b.WriteString(e.Artist)
		b.WriteString(" - ")
	}
	b.WriteString(displayTitle(e))
	if e.Album != "" {
		fmt.Fprintf(&b, " (%s)", e.Album)
	}
	fmt.Fprintf(&b, "  %s", FormatDuration(e.Duration))
	if e.Favorite {
		b.WriteString("  ★")
	}
	return b.String()
}

// EntryDetails renders the catalog fields of e, one per line.
func EntryDetails(e catalog.Entry, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:     %s\n", displayTitle(e))
	fmt.Fprintf(&b, "Artist:    %s\n", e.Artist)
	fmt.Fprintf(&b, "Album:     %s\n", e.Album)
	fmt.Fprintf(&b, "Genre:     %s\n", e.Genre)
	if e.Year > 0 {
		fmt.Fprintf(&b, "Year:      %d\n", e.Year)
	}
	fmt.Fprintf(&b, "Duration:  %s\n", FormatDuration(e.Duration))
	fmt.Fprintf(&b, "Plays:     %s\n", humanize.Comma(int64(e.PlayCount)))
	if e.ReplayGain != nil {
		fmt.Fprintf(&b, "Gain:      %+.2f dB\n", *e.ReplayGain)
	}
	if !e.AddedAt.IsZero() {
		fmt.Fprintf(&b, "Added:     %s\n", humanize.RelTime(e.AddedAt, now, "ago", "from now"))
	}
	fmt.Fprintf(&b, "Path:      %s\n", e.Path)
	return b.String()
}

func displayTitle(e catalog.Entry) string {
	if e.Title != "" {
		return e.Title
	}
	return e.Path
}

// Count renders n with a singular or plural noun: "1 track", "1,204 tracks".
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// ParseID parses a catalog entry identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

// ResolveEntry finds an entry by numeric id or by file path.
func ResolveEntry(lib *library.Library, ref string) (catalog.Entry, error) {
	if id, err := ParseID(ref); err == nil {
		return lib.Entry(id)
	}
	e, err := lib.EntryByPath(ref)
	if errors.Is(err, library.ErrNotFound) {
		return catalog.Entry{}, fmt.Errorf("%w: %s", library.ErrNotFound, ref)
	}
	return e, err
}

// ResolveEntries resolves each ref in order.
func ResolveEntries(lib *library.Library, refs []string) ([]catalog.Entry, error) {
	entries := make([]catalog.Entry, 0, len(refs))
	for _, ref := range refs {
		e, err := ResolveEntry(lib, ref)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
