// Package lyrics provides lyrics parsing and sourcing.
package lyrics

import (
	"cmp"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Line represents a single timestamped lyric line.
type Line struct {
	Time time.Duration
	Text string
}

// Seconds returns the line timestamp in seconds.
func (l Line) Seconds() float64 {
	return l.Time.Seconds()
}

// Document is a parsed lyric text. It is immutable once produced; a re-parse
// always yields a new Document.
type Document struct {
	Lines  []Line
	Title  string
	Artist string
	Album  string
	Offset time.Duration
	timed  bool
}

// Regular expressions for parsing LRC format
var (
	// Matches timestamps like [00:12.34], [00:12:34], [00:12] or [1:02.5]
	timestampRe = regexp.MustCompile(`\[(\d+):(\d{1,2})(?:[.:](\d+))?\]`)

	// Matches metadata tags like [ar:Artist Name]
	metadataRe = regexp.MustCompile(`^\[([a-zA-Z]+):(.*)\]$`)
)

// IsTimed reports whether content contains at least one recognizable
// timestamp tag.
func IsTimed(content string) bool {
	return timestampRe.MatchString(content)
}

// Parse parses LRC text into a time-sorted Document.
// Every timestamp on a line yields one Line sharing that line's text, so a
// refrain tagged [00:30][01:30] appears twice. Lines whose text is empty once
// tags are stripped are dropped. An empty input yields an empty Document.
func Parse(raw string) *Document {
	doc := &Document{}
	var offsetMs int64

	for line := range strings.SplitSeq(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if meta := metadataRe.FindStringSubmatch(line); meta != nil {
			value := strings.TrimSpace(meta[2])
			switch strings.ToLower(meta[1]) {
			case "ar":
				doc.Artist = value
			case "ti":
				doc.Title = value
			case "al":
				doc.Album = value
			case "offset":
				if ms, err := strconv.ParseInt(strings.TrimPrefix(value, "+"), 10, 64); err == nil {
					offsetMs = ms
				}
			}
			continue
		}

		matches := timestampRe.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}
		doc.timed = true

		text := strings.TrimSpace(timestampRe.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}

		for _, m := range matches {
			ts, ok := parseTimestamp(m)
			if !ok {
				continue
			}
			doc.Lines = append(doc.Lines, Line{Time: ts, Text: text})
		}
	}

	// A positive offset makes lyrics appear sooner.
	if offsetMs != 0 {
		doc.Offset = time.Duration(offsetMs) * time.Millisecond
		for i := range doc.Lines {
			doc.Lines[i].Time = max(doc.Lines[i].Time-doc.Offset, 0)
		}
	}

	slices.SortStableFunc(doc.Lines, func(a, b Line) int {
		return cmp.Compare(a.Time, b.Time)
	})

	return doc
}

// ParseLRC parses LRC format lyrics from a reader.
func ParseLRC(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// Plain builds an untimed Document, one Line per non-empty line of text.
func Plain(text string) *Document {
	doc := &Document{}
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			doc.Lines = append(doc.Lines, Line{Text: line})
		}
	}
	return doc
}

// IsSynced returns true if the lyrics have timestamps (synced).
func (d *Document) IsSynced() bool {
	if len(d.Lines) == 0 {
		return false
	}
	if d.timed {
		return true
	}
	for _, line := range d.Lines {
		if line.Time > 0 {
			return true
		}
	}
	return false
}

// LineAt returns the index of the lyric line at the given playback position.
// Returns -1 if no line is active yet or if lyrics are unsynced.
func (d *Document) LineAt(pos time.Duration) int {
	if !d.IsSynced() {
		return -1
	}
	// First line strictly after pos, minus one.
	i, _ := slices.BinarySearchFunc(d.Lines, pos, func(l Line, p time.Duration) int {
		if l.Time <= p {
			return -1
		}
		return 1
	})
	return i - 1
}

// parseTimestamp converts a timestampRe submatch into a Duration.
// The fraction is decimal: .5, .50 and .500 all mean half a second.
func parseTimestamp(m []string) (time.Duration, bool) {
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	var frac time.Duration
	if digits := m[3]; digits != "" {
		if len(digits) > 9 {
			digits = digits[:9]
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		frac = time.Duration(n)
		for range 9 - len(digits) {
			frac *= 10
		}
	}

	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		frac, true
}
