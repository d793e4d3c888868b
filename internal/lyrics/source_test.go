package lyrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/enrich"
)

type fakeService struct {
	result *enrich.Result
	err    error
	calls  int
}

func (f *fakeService) Lookup(context.Context, enrich.Query) (*enrich.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeMutator struct {
	lyrics map[int64]string
}

func (f *fakeMutator) IncrementPlayCount(int64) error { return nil }
func (f *fakeMutator) SetFavorite(int64, bool) error  { return nil }
func (f *fakeMutator) SetLyrics(id int64, lyrics string) error {
	if f.lyrics == nil {
		f.lyrics = map[int64]string{}
	}
	f.lyrics[id] = lyrics
	return nil
}

func TestSource_EntryBlobFirst(t *testing.T) {
	svc := &fakeService{}
	s := NewSource(svc, nil, t.TempDir(), zerolog.Nop())

	got := s.Fetch(context.Background(), catalog.Entry{Title: "t", Artist: "a", Lyrics: "[00:01.00]mine"})

	assert.Equal(t, OriginEntry, got.Origin)
	assert.True(t, got.Timed())
	require.Len(t, got.Document.Lines, 1)
	assert.Equal(t, "mine", got.Document.Lines[0].Text)
	assert.Zero(t, svc.calls)
}

func TestSource_LocalFile(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.flac")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.lrc"), []byte("[00:02.00]local"), 0o600))

	s := NewSource(&fakeService{}, nil, "", zerolog.Nop())
	got := s.Fetch(context.Background(), catalog.Entry{Path: audio})

	assert.Equal(t, OriginLocal, got.Origin)
	assert.Equal(t, "local", got.Document.Lines[0].Text)
}

func TestSource_EnrichmentCachedAndProposed(t *testing.T) {
	cache := t.TempDir()
	svc := &fakeService{result: &enrich.Result{PlainLyrics: "line one\nline two"}}
	mut := &fakeMutator{}
	s := NewSource(svc, mut, cache, zerolog.Nop())
	e := catalog.Entry{ID: 7, Title: "Song", Artist: "Band"}

	got := s.Fetch(context.Background(), e)

	assert.Equal(t, OriginEnrichment, got.Origin)
	assert.False(t, got.Timed())
	assert.Len(t, got.Document.Lines, 2)
	assert.Equal(t, "line one\nline two", mut.lyrics[7])

	again := s.Fetch(context.Background(), e)
	assert.Equal(t, OriginCache, again.Origin)
	assert.Equal(t, 1, svc.calls)
}

func TestSource_EnrichmentFailureIsSwallowed(t *testing.T) {
	svc := &fakeService{err: errors.New("timeout")}
	s := NewSource(svc, nil, "", zerolog.Nop())

	got := s.Fetch(context.Background(), catalog.Entry{Title: "Song", Artist: "Band"})

	assert.Equal(t, OriginNone, got.Origin)
	require.NotNil(t, got.Document)
	assert.Empty(t, got.Document.Lines)
}

func TestSource_NothingToQuery(t *testing.T) {
	svc := &fakeService{}
	s := NewSource(svc, nil, "", zerolog.Nop())

	got := s.Fetch(context.Background(), catalog.Entry{Title: "only title"})

	assert.Equal(t, OriginNone, got.Origin)
	assert.Zero(t, svc.calls)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AC/DC", "AC_DC"},
		{"  .hidden. ", "hidden"},
		{"", "_"},
		{"what?", "what_"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
