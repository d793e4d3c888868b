package tags

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/bogem/id3v2/v2"
)

// commitMP3 updates ID3v2 frames in an MP3 file.
func commitMP3(path string, u Update) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	// Use ID3v2.4 with UTF-8 for better Unicode support
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if u.Title != nil {
		tag.SetTitle(*u.Title)
	}
	if u.Artist != nil {
		tag.SetArtist(*u.Artist)
	}
	if u.Album != nil {
		tag.SetAlbum(*u.Album)
	}
	if u.Genre != nil {
		tag.SetGenre(*u.Genre)
	}
	if u.Year != nil {
		tag.DeleteFrames("TYER")
		tag.DeleteFrames("TDRC")
		if *u.Year > 0 {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, strconv.Itoa(*u.Year))
		}
	}
	if u.Lyrics != nil {
		usltID := tag.CommonID("Unsynchronised lyrics/text transcription")
		tag.DeleteFrames(usltID)
		if *u.Lyrics != "" {
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          "eng",
				ContentDescriptor: "",
				Lyrics:            *u.Lyrics,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// stripID3v2Tag removes ID3v2 tags from an MP3 file.
// This is used to handle ID3v2.2 tags which the id3v2 library doesn't support.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil
	}

	// Tag size in bytes 6-9 is a synchsafe integer (7 bits per byte)
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10
	if data[5]&0x10 != 0 {
		tagSize += 10 // footer
	}

	if tagSize >= len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if err := os.WriteFile(path, data[tagSize:], info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
