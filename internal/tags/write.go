package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Commit writes the non-nil fields of u to the file at path, leaving every
// other tag as it was. The file must already exist and is modified in place.
// Formats other than MP3 and FLAC return ErrUnsupportedFormat.
func Commit(path string, u Update) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %w", err)
	}
	if u.IsEmpty() {
		return nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtMP3:
		return commitMP3(path, u)
	case ExtFLAC:
		return commitFLAC(path, u)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
