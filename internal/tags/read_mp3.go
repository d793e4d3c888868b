package tags

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// readMP3ExtendedTags fills what dhowden/tag misses from the ID3v2 frames.
func readMP3ExtendedTags(path string, t *Tag) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer id3tag.Close()

	if t.Year == 0 {
		// ID3v2.4 recording date, then ID3v2.3 year
		t.Year = parseYear(getID3TextFrame(id3tag, "TDRC"))
		if t.Year == 0 {
			t.Year = parseYear(getID3TextFrame(id3tag, "TYER"))
		}
	}

	if g, ok := parseGain(getID3TXXXFrame(id3tag, replayGainKey)); ok {
		t.ReplayGain = g
	}

	if t.Lyrics == "" {
		t.Lyrics = getID3Lyrics(id3tag)
	}
}

// readMP3WithID3v2Fallback reads MP3 metadata using only the id3v2 library.
// This is used as a fallback when dhowden/tag fails (e.g., on some UTF-16 encoded tags).
func readMP3WithID3v2Fallback(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	title := id3tag.Title()
	if title == "" {
		title = fileTitle(path)
	}

	track, _ := parseTrackNumber(getID3TextFrame(id3tag, "TRCK"))

	t := &Tag{
		Path:        path,
		Title:       title,
		Artist:      id3tag.Artist(),
		Album:       id3tag.Album(),
		Genre:       id3tag.Genre(),
		Year:        parseYear(id3tag.Year()),
		TrackNumber: track,
	}

	readMP3ExtendedTags(path, t)

	return t, nil
}

// parseTrackNumber parses a track number string like "5" or "5/10".
func parseTrackNumber(s string) (num, total int) {
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		total, _ = strconv.Atoi(parts[1])
	}
	return num, total
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// getID3TXXXFrame reads a user-defined text frame (TXXX) value.
// Descriptions are matched case-insensitively.
func getID3TXXXFrame(id3tag *id3v2.Tag, description string) string {
	for _, frame := range id3tag.GetFrames("TXXX") {
		if txxx, ok := frame.(id3v2.UserDefinedTextFrame); ok {
			if strings.EqualFold(txxx.Description, description) {
				return txxx.Value
			}
		}
	}
	return ""
}

// getID3Lyrics returns the first unsynchronised lyrics frame.
func getID3Lyrics(id3tag *id3v2.Tag) string {
	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if uslt, ok := frame.(id3v2.UnsynchronisedLyricsFrame); ok && uslt.Lyrics != "" {
			return uslt.Lyrics
		}
	}
	return ""
}
