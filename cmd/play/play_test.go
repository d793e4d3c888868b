package play

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/cmd/common/commontest"
	"github.com/llehouerou/tides/internal/app"
	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/engine"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/playlist"
)

// silentOutput accepts the stream but never pulls from it.
type silentOutput struct{ mu sync.Mutex }

func (o *silentOutput) Init(beep.SampleRate, int) error { return nil }
func (o *silentOutput) Play(beep.Streamer)              {}
func (o *silentOutput) Lock()                           { o.mu.Lock() }
func (o *silentOutput) Unlock()                         { o.mu.Unlock() }
func (o *silentOutput) Close()                          {}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func audioEnv(t *testing.T) *common.Env {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath: filepath.Join(dir, "tides.db"),
		Lyrics: config.LyricsConfig{CacheDir: filepath.Join(dir, "lyrics")},
	}
	env, err := common.OpenWith(cfg, app.Options{
		Audio:      true,
		Output:     &silentOutput{},
		Enrichment: enrich.Noop{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestRun_PlaysSearchResults(t *testing.T) {
	env := audioEnv(t)
	commontest.Seed(t, env,
		commontest.Track{Title: "Blue Monday", Artist: "Order"},
		commontest.Track{Title: "Blue Hour", Artist: "Order"},
		commontest.Track{Title: "Red", Artist: "Other"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, env, &Params{Search: "blue", Repeat: "all"}, &out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "▶")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, engine.Playing, env.Engine.State())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	snap := env.Queue.Snapshot()
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, playlist.RepeatAll, snap.Repeat)
	assert.Contains(t, out.String(), "Blue")
	assert.NotContains(t, out.String(), "Red")
}

func TestRun_NothingToPlay(t *testing.T) {
	env := audioEnv(t)
	commontest.Seed(t, env, commontest.Track{Title: "Only", Artist: "One"})

	tests := []struct {
		name   string
		params Params
	}{
		{"empty queue", Params{}},
		{"no search results", Params{Search: "zzzz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), env, &tt.params, &bytes.Buffer{})
			assert.ErrorIs(t, err, ErrNothingToPlay)
		})
	}
}

func TestRun_BadRepeat(t *testing.T) {
	env := audioEnv(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Only", Artist: "One"})

	err := Run(context.Background(), env, &Params{Entries: []string{seeded[0].Path}, Repeat: "twice"}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Equal(t, engine.Stopped, env.Engine.State())
}

func TestSelected(t *testing.T) {
	assert.False(t, selected(&Params{}))
	assert.False(t, selected(&Params{Shuffle: true, Repeat: "one"}))
	assert.True(t, selected(&Params{Entries: []string{"1"}}))
	assert.True(t, selected(&Params{Search: "x"}))
	assert.True(t, selected(&Params{Smart: "mix"}))
}
