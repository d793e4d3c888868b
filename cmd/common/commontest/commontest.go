// Package commontest builds command environments over temporary databases.
package commontest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/app"
	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/tags"
	"github.com/llehouerou/tides/internal/testutil"
)

// Track describes a catalog entry to seed.
type Track struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// Env opens a catalog-only environment; it is closed when the test ends.
func Env(t testing.TB) *common.Env {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath: filepath.Join(dir, "tides.db"),
		Lyrics: config.LyricsConfig{CacheDir: filepath.Join(dir, "lyrics")},
	}
	env, err := common.OpenWith(cfg, app.Options{Enrichment: enrich.Noop{}})
	if err != nil {
		t.Fatalf("open env: %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	return env
}

// Seed writes a short WAV file per track, adds it to the catalog and sets
// its metadata. Entries are returned in argument order.
func Seed(t testing.TB, env *common.Env, tracks ...Track) []catalog.Entry {
	t.Helper()
	dir := t.TempDir()
	out := make([]catalog.Entry, 0, len(tracks))
	for i, tr := range tracks {
		path := filepath.Join(dir, fmt.Sprintf("%02d.wav", i))
		testutil.WriteTone(t, path, 200*time.Millisecond)
		if err := env.Library.AddFiles([]string{path}); err != nil {
			t.Fatalf("add %s: %v", path, err)
		}
		e, err := env.Library.EntryByPath(path)
		if err != nil {
			t.Fatalf("entry %s: %v", path, err)
		}
		u := tags.Update{Title: &tr.Title, Artist: &tr.Artist, Album: &tr.Album, Genre: &tr.Genre, Year: &tr.Year}
		if err := env.Library.UpdateMetadata(e.ID, u); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		e, err = env.Library.Entry(e.ID)
		if err != nil {
			t.Fatalf("reload %s: %v", path, err)
		}
		out = append(out, e)
	}
	return out
}
