package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// replayGainKey is the vorbis comment and TXXX description for track gain.
const replayGainKey = "replaygain_track_gain"

// Read reads tag metadata from a music file.
// Files without readable tags still yield a Tag titled after the file name.
func Read(path string) (*Tag, error) {
	if !IsMusicFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))

	m, err := tag.ReadFrom(f)
	if err != nil {
		if ext == ExtMP3 {
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			if t, fbErr := readMP3WithID3v2Fallback(path); fbErr == nil {
				return t, nil
			}
		}
		return &Tag{Path: path, Title: fileTitle(path)}, nil //nolint:nilerr // untagged files are still playable
	}

	title := m.Title()
	if title == "" {
		title = fileTitle(path)
	}
	track, _ := m.Track()

	t := &Tag{
		Path:        path,
		Title:       title,
		Artist:      m.Artist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Year:        m.Year(),
		TrackNumber: track,
		Lyrics:      m.Lyrics(),
	}

	if ext == ExtMP3 {
		readMP3ExtendedTags(path, t)
	} else {
		t.ReplayGain = rawReplayGain(m.Raw())
	}

	return t, nil
}

// rawReplayGain looks for a track gain in a dhowden/tag raw map.
func rawReplayGain(raw map[string]any) *float64 {
	for k, v := range raw {
		if !strings.EqualFold(k, replayGainKey) {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case *tag.Comm:
			s = val.Text
		default:
			continue
		}
		if g, ok := parseGain(s); ok {
			return g
		}
	}
	return nil
}

func fileTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
