// Package decode opens playback resources as seekable beep streams.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupported is returned for resources with no known decoder.
var ErrUnsupported = errors.New("unsupported audio format")

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// Files decodes resource locators that are local file paths.
// The zero value is ready to use.
type Files struct{}

// Open implements the engine and waveform decoder contracts.
func (Files) Open(locator string) (beep.StreamSeekCloser, beep.Format, error) {
	return Open(locator)
}

// Supported reports whether locator has a decodable extension.
func Supported(locator string) bool {
	switch strings.ToLower(filepath.Ext(locator)) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	}
	return false
}

// Open decodes the file at path. Closing the returned streamer closes the file.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extMP3:
		streamer, format, err = decodeGoMP3(f)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, beep.Format{}, err
		}
		streamer, format, err = flac.Decode(f)
	case extWAV:
		streamer, format, err = wav.Decode(f)
	case extOGG:
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return streamer, format, nil
}

// Duration returns the playing time of the file at path.
func Duration(path string) (time.Duration, error) {
	s, format, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}

// skipID3v2 positions r after a leading ID3v2 tag, or at the start if none.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}

	if string(header[:3]) != "ID3" {
		_, err := r.Seek(0, io.SeekStart)
		return err
	}

	// Synchsafe integer: 7 bits per byte
	size := int64(header[6]&0x7f)<<21 |
		int64(header[7]&0x7f)<<14 |
		int64(header[8]&0x7f)<<7 |
		int64(header[9]&0x7f)
	if header[5]&0x10 != 0 {
		size += 10 // footer
	}

	_, err := r.Seek(10+size, io.SeekStart)
	return err
}
