package lyrics

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/enrich"
)

// Origin tells where a lyric document came from.
type Origin string

const (
	OriginEntry      Origin = "entry"
	OriginLocal      Origin = "local"
	OriginCache      Origin = "cache"
	OriginEnrichment Origin = "enrichment"
	OriginNone       Origin = "not_found"
)

// Source resolves lyrics for catalog entries.
type Source struct {
	service  enrich.Service
	mutator  catalog.Mutator
	cacheDir string
	log      zerolog.Logger
}

// DefaultCacheDir returns the lyrics cache directory under the XDG cache home.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "tides", "lyrics")
}

// NewSource creates a lyrics source. service and mutator may be nil; an empty
// cacheDir disables caching.
func NewSource(service enrich.Service, mutator catalog.Mutator, cacheDir string, log zerolog.Logger) *Source {
	if service == nil {
		service = enrich.Noop{}
	}
	return &Source{
		service:  service,
		mutator:  mutator,
		cacheDir: cacheDir,
		log:      log.With().Str("component", "lyrics").Logger(),
	}
}

// FetchResult contains the result of a lyrics fetch.
// Document is never nil; it is empty when nothing was found.
type FetchResult struct {
	Document *Document
	Raw      string
	Origin   Origin
}

// Timed reports whether the fetched lyrics carry timestamps.
func (r FetchResult) Timed() bool {
	return IsTimed(r.Raw)
}

// Fetch retrieves lyrics for an entry using the priority order:
// 1. The entry's own lyric text
// 2. Local .lrc file next to the audio file
// 3. Cached .lrc file
// 4. Enrichment service (result is cached and proposed to the catalog)
//
// Enrichment failures are logged and never returned.
func (s *Source) Fetch(ctx context.Context, e catalog.Entry) FetchResult {
	if raw := strings.TrimSpace(e.Lyrics); raw != "" {
		return newResult(raw, OriginEntry)
	}

	if e.Path != "" {
		if raw, ok := readLyricsFile(lrcPathForAudio(e.Path)); ok {
			return newResult(raw, OriginLocal)
		}
	}

	q := enrich.QueryFor(e)
	if !q.Valid() {
		return newResult("", OriginNone)
	}

	if path := s.cachePath(e.Artist, e.Title); path != "" {
		if raw, ok := readLyricsFile(path); ok {
			return newResult(raw, OriginCache)
		}
	}

	result, err := s.service.Lookup(ctx, q)
	if err != nil {
		s.log.Warn().Err(err).Str("artist", e.Artist).Str("title", e.Title).Msg("lyrics lookup failed")
		return newResult("", OriginNone)
	}
	raw := strings.TrimSpace(result.Lyrics())
	if raw == "" {
		return newResult("", OriginNone)
	}

	if err := s.saveToCache(e.Artist, e.Title, raw); err != nil {
		s.log.Debug().Err(err).Msg("lyrics cache write failed")
	}
	if s.mutator != nil && e.ID != 0 {
		if err := s.mutator.SetLyrics(e.ID, raw); err != nil {
			s.log.Warn().Err(err).Int64("entry", e.ID).Msg("store lyrics")
		}
	}

	return newResult(raw, OriginEnrichment)
}

// Load parses raw lyric text, choosing synced or plain rendering.
func Load(raw string) *Document {
	if IsTimed(raw) {
		return Parse(raw)
	}
	return Plain(raw)
}

func newResult(raw string, origin Origin) FetchResult {
	return FetchResult{Document: Load(raw), Raw: raw, Origin: origin}
}

// lrcPathForAudio returns the expected .lrc file path for an audio file.
func lrcPathForAudio(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return audioPath[:len(audioPath)-len(ext)] + ".lrc"
}

func readLyricsFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	raw := strings.TrimSpace(string(data))
	return raw, raw != ""
}

// cachePath returns the cache file path for a track.
func (s *Source) cachePath(artist, title string) string {
	if s.cacheDir == "" {
		return ""
	}
	return filepath.Join(s.cacheDir, sanitizeFilename(artist), sanitizeFilename(title)+".lrc")
}

// saveToCache saves lyric content to the cache directory.
func (s *Source) saveToCache(artist, title, content string) error {
	path := s.cachePath(artist, title)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizeFilename replaces characters that are problematic in filenames.
func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "_"
	}
	return name
}
