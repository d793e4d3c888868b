package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/engine"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/testutil"
)

type fakeOutput struct {
	inited bool
	closed bool
	root   beep.Streamer
}

func (o *fakeOutput) Init(beep.SampleRate, int) error { o.inited = true; return nil }
func (o *fakeOutput) Play(s beep.Streamer)            { o.root = s }
func (o *fakeOutput) Lock()                           {}
func (o *fakeOutput) Unlock()                         {}
func (o *fakeOutput) Close()                          { o.closed = true }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBPath: filepath.Join(dir, "tides.db"),
		Lyrics: config.LyricsConfig{CacheDir: filepath.Join(dir, "lyrics")},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, audio bool) (*App, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	a, err := New(cfg, zerolog.Nop(), Options{
		Audio:      audio,
		Output:     out,
		Enrichment: enrich.Noop{},
	})
	require.NoError(t, err)
	return a, out
}

func TestNew_CatalogOnly(t *testing.T) {
	a, out := newTestApp(t, testConfig(t), false)
	defer a.Close()

	assert.NotNil(t, a.Library)
	assert.NotNil(t, a.Playlists)
	assert.NotNil(t, a.Queue)
	assert.NotNil(t, a.Waveform)
	assert.NotNil(t, a.Lyrics)
	assert.Nil(t, a.Engine)
	assert.Nil(t, a.Playback)
	assert.False(t, out.inited)
}

func TestNew_AudioWiresEngine(t *testing.T) {
	a, out := newTestApp(t, testConfig(t), true)

	require.NotNil(t, a.Engine)
	require.NotNil(t, a.Playback)
	assert.True(t, out.inited)
	assert.NotNil(t, out.root)

	require.NoError(t, a.Close())
	assert.True(t, out.closed)
	require.NoError(t, a.Close())
}

func TestApp_PlaybackAndRestore(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.DBPath)
	a1 := filepath.Join(dir, "music", "a.wav")
	a2 := filepath.Join(dir, "music", "b.wav")
	testutil.WriteTone(t, a1, time.Second)
	testutil.WriteTone(t, a2, time.Second)

	a, _ := newTestApp(t, cfg, true)
	require.NoError(t, a.Library.AddFiles([]string{a1, a2}))
	entries, err := a.Library.All()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, a.Queue.SetQueue(entries, 0))
	require.NoError(t, a.Playback.PlayIndex(context.Background(), 1))
	assert.Equal(t, engine.Playing, a.Engine.State())

	played, err := a.Library.Entry(entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, played.PlayCount)

	a.Engine.SetMasterVolume(0.4)
	a.Engine.SetEqualizer(2, 0, -3)
	require.NoError(t, a.Close())

	b, _ := newTestApp(t, cfg, true)
	defer b.Close()

	snap := b.Queue.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 1, snap.Cursor)
	assert.InDelta(t, 0.4, b.Engine.MasterVolume(), 1e-9)
	bass, _, treble := b.Engine.Equalizer()
	assert.InDelta(t, 2, bass, 1e-9)
	assert.InDelta(t, -3, treble, 1e-9)
}

func TestEngineConfig(t *testing.T) {
	off := false
	cfg := &config.Config{Playback: config.PlaybackConfig{
		Crossfade:   &off,
		SampleRate:  48000,
		BufferMs:    50,
		SmoothingMs: 20,
		Volume:      0.8,
	}}

	c := EngineConfig(cfg)
	assert.Equal(t, beep.SampleRate(48000), c.SampleRate)
	assert.Equal(t, 50*time.Millisecond, c.BufferSize)
	assert.Equal(t, 20*time.Millisecond, c.Smoothing)
	assert.Zero(t, c.Crossfade)
	assert.InDelta(t, 0.8, c.Volume, 1e-9)
	assert.Equal(t, 256, c.Analyser.FFTSize)

	on := &config.Config{}
	assert.Equal(t, 3*time.Second, EngineConfig(on).Crossfade)
}
