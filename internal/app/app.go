// Package app is the composition root. New builds every component from the
// configuration; Close tears them down in reverse order.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/decode"
	"github.com/llehouerou/tides/internal/dsp"
	"github.com/llehouerou/tides/internal/engine"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/library"
	"github.com/llehouerou/tides/internal/lrclib"
	"github.com/llehouerou/tides/internal/lyrics"
	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/playlists"
	"github.com/llehouerou/tides/internal/queue"
	"github.com/llehouerou/tides/internal/state"
	"github.com/llehouerou/tides/internal/waveform"
)

// Options select which parts of the stack New builds.
type Options struct {
	// Audio opens the output and builds the engine and playback controller.
	// Catalog-only commands leave it off.
	Audio bool

	Output     engine.Output  // default engine.Speaker
	Loader     engine.Loader  // default decode.Files
	Enrichment enrich.Service // default lrclib.net, or none when disabled in config
	DBPath     string         // overrides the configured path
}

// App holds the constructed components.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	State     *state.Manager
	Library   *library.Library
	Playlists *playlists.Playlists
	Queue     *queue.Manager
	Waveform  *waveform.Extractor
	Lyrics    *lyrics.Source

	// nil unless Options.Audio
	Engine   *engine.Engine
	Playback *playback.Controller

	closed bool
}

// New wires the application. On error everything built so far is closed.
func New(cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	if opts.Output == nil {
		opts.Output = engine.Speaker{}
	}
	if opts.Loader == nil {
		opts.Loader = decode.Files{}
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		p, err := state.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	}

	st, err := state.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		State:     st,
		Library:   library.New(st.DB()),
		Playlists: playlists.New(st.DB()),
		Queue:     queue.New(st),
		Waveform:  waveform.New(opts.Loader, log),
	}
	a.Lyrics = lyrics.NewSource(enrichmentFor(cfg, opts), a.Library, lyricsCacheDir(cfg), log)

	if err := a.restoreQueue(); err != nil {
		// a stale session must not block startup
		log.Warn().Err(err).Msg("queue not restored")
	}

	if opts.Audio {
		if err := a.startAudio(opts); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	return a, nil
}

func enrichmentFor(cfg *config.Config, opts Options) enrich.Service {
	if opts.Enrichment != nil {
		return opts.Enrichment
	}
	if !cfg.EnrichEnabled() {
		return enrich.Noop{}
	}
	return lrclib.New()
}

func lyricsCacheDir(cfg *config.Config) string {
	if cfg.Lyrics.CacheDir != "" {
		return cfg.Lyrics.CacheDir
	}
	return lyrics.DefaultCacheDir()
}

func (a *App) restoreQueue() error {
	resolve, err := a.Library.Resolver()
	if err != nil {
		return err
	}
	return a.Queue.Load(resolve)
}

// EngineConfig converts the playback and analyser sections.
func EngineConfig(cfg *config.Config) engine.Config {
	pb := cfg.GetPlaybackConfig()
	an := cfg.GetAnalyserConfig()

	c := engine.Config{
		SampleRate: beep.SampleRate(pb.SampleRate),
		BufferSize: time.Duration(pb.BufferMs) * time.Millisecond,
		Smoothing:  time.Duration(pb.SmoothingMs) * time.Millisecond,
		Volume:     pb.Volume,
		Analyser: dsp.AnalyserConfig{
			FFTSize:   an.FFTSize,
			Smoothing: an.Smoothing,
			MinDB:     an.MinDB,
			MaxDB:     an.MaxDB,
		},
	}
	if *pb.Crossfade {
		c.Crossfade = time.Duration(pb.CrossfadeSeconds * float64(time.Second))
	}
	return c
}

func (a *App) startAudio(opts Options) error {
	eng, err := engine.New(EngineConfig(a.Config), opts.Output, opts.Loader, a.Log)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	a.Engine = eng

	eq := a.Config.GetEqualizerConfig()
	eng.SetEqualizer(eq.Bass, eq.Mid, eq.Treble)

	// saved mixer settings override the configured starting point
	saved, err := a.State.GetMixer()
	if err != nil {
		a.Log.Warn().Err(err).Msg("mixer settings not restored")
	} else if saved != nil {
		eng.SetMasterVolume(saved.Volume)
		eng.SetEqualizer(saved.Bass, saved.Mid, saved.Treble)
	}

	a.Playback = playback.New(eng, a.Queue, a.Library, playback.Options{
		Crossfade: a.Config.CrossfadeEnabled(),
	}, a.Log)

	return nil
}

// SaveMixer persists the engine's current volume and equalizer.
func (a *App) SaveMixer() error {
	if a.Engine == nil {
		return nil
	}
	bass, mid, treble := a.Engine.Equalizer()
	return a.State.SaveMixer(state.MixerState{
		Volume: a.Engine.MasterVolume(),
		Bass:   bass,
		Mid:    mid,
		Treble: treble,
	})
}

// Close stops playback, saves the mixer and closes the database. It is
// safe to call more than once.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.Playback != nil {
		errs = append(errs, a.Playback.Close())
	}
	if a.Engine != nil {
		errs = append(errs, a.SaveMixer(), a.Engine.Close())
	}
	errs = append(errs, a.State.Close())
	return errors.Join(errs...)
}
