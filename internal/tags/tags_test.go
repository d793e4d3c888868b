package tags

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestMP3 creates a minimal MP3 file (one MPEG1 Layer3 frame, no tags).
func createTestMP3(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.mp3")

	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
	return path
}

// createTestFLAC creates a FLAC file holding only a STREAMINFO block.
func createTestFLAC(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.flac")

	data := []byte{'f', 'L', 'a', 'C', 0x80, 0x00, 0x00, 0x22}
	data = append(data, make([]byte, 34)...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to create test FLAC: %v", err)
	}
	return path
}

func ptr[T any](v T) *T { return &v }

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.MP3", true},
		{"/a/b/song.flac", true},
		{"song.ogg", true},
		{"song.wav", true},
		{"song.m4a", false},
		{"cover.jpg", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsMusicFile(tt.path); got != tt.want {
			t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseGain(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"-6.54 dB", -6.54, true},
		{"+2.10 dB", 2.10, true},
		{"3", 3, true},
		{"", 0, false},
		{"loud", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseGain(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parseGain(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && *got != tt.want {
			t.Errorf("parseGain(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, 2019, parseYear("2019-03-01"))
	assert.Equal(t, 1999, parseYear("1999"))
	assert.Equal(t, 0, parseYear(""))
	assert.Equal(t, 0, parseYear("unknown"))
}

func TestUpdate_IsEmpty(t *testing.T) {
	assert.True(t, Update{}.IsEmpty())
	assert.False(t, Update{Year: ptr(0)}.IsEmpty())
}

func TestCommitMP3_RoundTrip(t *testing.T) {
	path := createTestMP3(t, t.TempDir())

	err := Commit(path, Update{
		Title:  ptr("Aurora"),
		Artist: ptr("Test Artist"),
		Album:  ptr("Dawn"),
		Year:   ptr(2021),
		Lyrics: ptr("[00:01.00]first"),
	})
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", got.Title)
	assert.Equal(t, "Test Artist", got.Artist)
	assert.Equal(t, "Dawn", got.Album)
	assert.Equal(t, 2021, got.Year)
	assert.Equal(t, "[00:01.00]first", got.Lyrics)
}

func TestCommitMP3_KeepsUntouchedFields(t *testing.T) {
	path := createTestMP3(t, t.TempDir())
	require.NoError(t, Commit(path, Update{Title: ptr("Old"), Genre: ptr("Lofi")}))

	require.NoError(t, Commit(path, Update{Title: ptr("New")}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Lofi", got.Genre)
}

func TestReadMP3_ReplayGain(t *testing.T) {
	path := createTestMP3(t, t.TempDir())

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	tag.SetVersion(4)
	tag.SetTitle("Gain")
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: "REPLAYGAIN_TRACK_GAIN",
		Value:       "-6.50 dB",
	})
	require.NoError(t, tag.Save())
	require.NoError(t, tag.Close())

	got, err := Read(path)
	require.NoError(t, err)
	require.NotNil(t, got.ReplayGain)
	assert.InDelta(t, -6.5, *got.ReplayGain, 1e-9)
}

func TestCommitFLAC_RoundTrip(t *testing.T) {
	path := createTestFLAC(t, t.TempDir())

	require.NoError(t, Commit(path, Update{
		Title:  ptr("Aurora"),
		Artist: ptr("Test Artist"),
		Genre:  ptr("Ambient"),
		Lyrics: ptr("plain words"),
	}))
	require.NoError(t, Commit(path, Update{Title: ptr("Borealis")}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Borealis", got.Title)
	assert.Equal(t, "Test Artist", got.Artist)
	assert.Equal(t, "Ambient", got.Genre)
	assert.Equal(t, "plain words", got.Lyrics)
}

func TestCommitFLAC_ID3v2HeaderStripping(t *testing.T) {
	path := createTestFLAC(t, t.TempDir())

	flacData, err := os.ReadFile(path)
	require.NoError(t, err)

	// Some tools incorrectly prepend ID3v2 headers to FLAC files
	id3v2Header := []byte{
		'I', 'D', '3',
		0x04, 0x00,
		0x00,
		0x00, 0x00, 0x00, 0x0A,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	data := append(append([]byte{}, id3v2Header...), flacData...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	require.NoError(t, Commit(path, Update{Title: ptr("Test Title")}))

	final, err := os.ReadFile(path)
	require.NoError(t, err)
	if string(final[:4]) != "fLaC" {
		t.Error("FLAC file should start with fLaC marker")
	}
}

func TestCommit_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	err := Commit(path, Update{Title: ptr("x")})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCommit_MissingFile(t *testing.T) {
	err := Commit(filepath.Join(t.TempDir(), "gone.mp3"), Update{Title: ptr("x")})
	require.Error(t, err)
}

func TestRead_UntaggedFileUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "My Song.wav")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o600))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "My Song", got.Title)
}

func TestWithoutKey(t *testing.T) {
	in := []string{"TITLE=a", "title=b", "ARTIST=c", "broken"}
	assert.Equal(t, []string{"ARTIST=c", "broken"}, withoutKey(in, "TITLE"))
}

func TestStripID3v2Tag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mp3")

	id3v2Header := []byte{
		'I', 'D', '3',
		0x04, 0x00,
		0x00,
		0x00, 0x00, 0x00, 0x0A,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	data := append(append([]byte{}, id3v2Header...), 0xFF, 0xFB, 0x90, 0x00)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	require.NoError(t, stripID3v2Tag(path))

	result, err := os.ReadFile(path)
	require.NoError(t, err)
	if result[0] != 0xFF || result[1] != 0xFB {
		t.Error("MP3 frame header should be at start of file")
	}
}

func TestStripID3v2Tag_NoTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mp3")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xFB, 0x90, 0x00}, 0o600))

	require.NoError(t, stripID3v2Tag(path))

	result, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, result, 4)
}
