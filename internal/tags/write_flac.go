package tags

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// commitFLAC updates Vorbis comments in a FLAC file.
func commitFLAC(path string, u Update) error {
	f, id3Size, err := parseFLACWithID3Support(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	// Tags can only be rewritten once a prepended ID3v2 header is gone
	if id3Size > 0 {
		if err := stripID3v2Header(path, id3Size); err != nil {
			return fmt.Errorf("strip ID3v2 header: %w", err)
		}
		f, err = flac.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parse file after ID3 strip: %w", err)
		}
	}

	cmtIdx := -1
	cmts := flacvorbis.New()
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmtIdx = i
			existing, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("parse vorbis comments: %w", err)
			}
			cmts = existing
			break
		}
	}

	set := func(key string, value *string) error {
		if value == nil {
			return nil
		}
		cmts.Comments = withoutKey(cmts.Comments, key)
		if *value == "" {
			return nil
		}
		return cmts.Add(key, *value)
	}

	var year *string
	if u.Year != nil {
		y := ""
		if *u.Year > 0 {
			y = strconv.Itoa(*u.Year)
		}
		year = &y
		cmts.Comments = withoutKey(cmts.Comments, "YEAR")
	}

	for _, field := range []struct {
		key   string
		value *string
	}{
		{"TITLE", u.Title},
		{"ARTIST", u.Artist},
		{"ALBUM", u.Album},
		{"GENRE", u.Genre},
		{"DATE", year},
		{"LYRICS", u.Lyrics},
	} {
		if err := set(field.key, field.value); err != nil {
			return fmt.Errorf("add %s: %w", strings.ToLower(field.key), err)
		}
	}

	cmtBlock := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtBlock
	} else {
		f.Meta = append(f.Meta, &cmtBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// withoutKey drops every KEY=value comment for key, matched case-insensitively.
func withoutKey(comments []string, key string) []string {
	out := comments[:0]
	for _, c := range comments {
		k, _, ok := strings.Cut(c, "=")
		if ok && strings.EqualFold(k, key) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseFLACWithID3Support parses a FLAC file, handling ID3v2 headers if present.
// Returns the parsed FLAC file, the size of any ID3v2 header found, and any error.
func parseFLACWithID3Support(path string) (*flac.File, int64, error) {
	f, err := flac.ParseFile(path)
	if err == nil {
		return f, 0, nil
	}

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, 0, err
	}
	defer file.Close()

	header := make([]byte, 10)
	if _, readErr := io.ReadFull(file, header); readErr != nil {
		return nil, 0, err
	}
	if !bytes.Equal(header[:3], []byte(id3Magic)) {
		return nil, 0, err
	}

	id3Size := int64(10)
	id3Size += int64(header[6]&0x7f)<<21 |
		int64(header[7]&0x7f)<<14 |
		int64(header[8]&0x7f)<<7 |
		int64(header[9]&0x7f)

	if _, seekErr := file.Seek(id3Size, io.SeekStart); seekErr != nil {
		return nil, 0, err
	}
	flacMagic := make([]byte, 4)
	if _, readErr := io.ReadFull(file, flacMagic); readErr != nil {
		return nil, 0, err
	}
	if !bytes.Equal(flacMagic, []byte("fLaC")) {
		return nil, 0, errors.New("no fLaC marker found after ID3v2 header")
	}

	return nil, id3Size, nil
}

// stripID3v2Header removes ID3v2 header from a file by rewriting it.
func stripID3v2Header(path string, id3Size int64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if int64(len(data)) <= id3Size {
		return errors.New("file too small to strip ID3v2 header")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data[id3Size:], info.Mode().Perm())
}
