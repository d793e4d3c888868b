// Package tags provides tag reading and a narrow tag commit contract for
// music files. Reading covers MP3, FLAC, Ogg Vorbis and WAV; committing
// covers MP3 and FLAC.
package tags

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtWAV  = ".wav"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// ErrUnsupportedFormat is returned by Commit for formats it cannot write.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Tag contains the tag metadata the catalog cares about.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int

	// ReplayGain is the track gain in dB, nil when absent.
	ReplayGain *float64

	// Lyrics is the embedded lyric text (USLT frame or LYRICS comment).
	Lyrics string
}

// Update is a partial tag change. Nil fields are left untouched.
type Update struct {
	Title  *string
	Artist *string
	Album  *string
	Genre  *string
	Year   *int
	Lyrics *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Artist == nil && u.Album == nil &&
		u.Genre == nil && u.Year == nil && u.Lyrics == nil
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOGG, ExtWAV:
		return true
	}
	return false
}

// parseGain parses a replay gain value such as "-6.54 dB".
func parseGain(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "dB"), "db"))
	if s == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// parseYear takes the leading year of a date like 2019-03-01.
func parseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) > 4 {
		date = date[:4]
	}
	y, err := strconv.Atoi(date)
	if err != nil {
		return 0
	}
	return y
}
