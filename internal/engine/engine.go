// Package engine implements the playback signal engine: two alternating
// channels with crossfade ramps feeding a shared equalizer, analyser,
// limiter and master gain.
//
// Graph, in signal order:
//
//	channel gain (x2) -> mixer -> equalizer -> analyser -> limiter -> master -> output
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/dsp"
)

var (
	ErrNoEntry = errors.New("no active entry")
	ErrClosed  = errors.New("engine closed")
)

// Config configures the engine.
type Config struct {
	SampleRate beep.SampleRate
	BufferSize time.Duration
	Crossfade  time.Duration
	Smoothing  time.Duration
	Volume     float64
	Analyser   dsp.AnalyserConfig
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		BufferSize: 100 * time.Millisecond,
		Crossfade:  3 * time.Second,
		Smoothing:  50 * time.Millisecond,
		Volume:     1.0,
	}
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 100 * time.Millisecond
	}
	c.Crossfade = max(c.Crossfade, 0)
	c.Smoothing = max(c.Smoothing, 0)
	c.Volume = max(c.Volume, 0)
	return c
}

// Engine owns the audio graph. Control methods are safe for concurrent use.
type Engine struct {
	cfg    Config
	out    Output
	loader Loader
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool

	mixer    *mixer
	eq       *dsp.Equalizer
	analyser *dsp.Analyser
	limiter  *dsp.Limiter
	master   *dsp.Gain

	events   chan Event
	releases chan beep.StreamSeekCloser
	released chan struct{}
}

// New builds the graph, initializes out and starts playing silence.
func New(cfg Config, out Output, loader Loader, log zerolog.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:      cfg,
		out:      out,
		loader:   loader,
		log:      log.With().Str("component", "engine").Logger(),
		events:   make(chan Event, 16),
		releases: make(chan beep.StreamSeekCloser, 8),
		released: make(chan struct{}),
	}

	e.mixer = &mixer{
		channels:  [2]*channel{newChannel(0), newChannel(1)},
		crossfade: cfg.Crossfade,
		events:    e.events,
		releases:  e.releases,
	}
	e.eq = dsp.NewEqualizer(e.mixer, cfg.SampleRate, cfg.Smoothing)
	e.analyser = dsp.NewAnalyser(e.eq, cfg.Analyser)
	e.limiter = dsp.NewLimiter(e.analyser, cfg.SampleRate)
	e.master = dsp.NewGain(e.limiter, cfg.SampleRate, cfg.Volume, cfg.Smoothing)

	if err := out.Init(cfg.SampleRate, cfg.SampleRate.N(cfg.BufferSize)); err != nil {
		return nil, fmt.Errorf("init output: %w", err)
	}

	go e.releaser()
	out.Play(e.master)

	return e, nil
}

// releaser closes sources detached by the audio callback.
func (e *Engine) releaser() {
	defer close(e.released)
	for src := range e.releases {
		if err := src.Close(); err != nil {
			e.log.Debug().Err(err).Msg("close source")
			continue
		}
		e.log.Debug().Msg("channel source released")
	}
}

// Events returns the engine event stream. It is closed by Close.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Play loads entry on the inactive channel and makes it active. During a
// crossfade the entry takes whichever channel is quieter.
//
// With crossfade set and audio on the active channel, the active channel
// ramps from its current gain to zero while the new one ramps from zero to
// the entry's replay gain; the old source is released when the ramp ends.
// Otherwise the switch is instant. A load failure leaves the audible
// channel untouched.
func (e *Engine) Play(ctx context.Context, entry catalog.Entry, crossfade bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if entry.Path == "" {
		return fmt.Errorf("%w: entry %d has no resource", ErrNoEntry, entry.ID)
	}

	src, format, err := e.loader.Open(entry.Path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", entry.Path).Msg("load failed")
		return fmt.Errorf("load %q: %w", entry.Path, err)
	}
	if err := ctx.Err(); err != nil {
		_ = src.Close()
		return err
	}

	var stream beep.Streamer = src
	if format.SampleRate != e.cfg.SampleRate {
		stream = beep.Resample(4, format.SampleRate, e.cfg.SampleRate, src)
	}
	target := entry.GainFactor()

	e.mixer.suspended.Store(false)

	e.out.Lock()
	m := e.mixer
	clock := m.clock.Load()
	outgoing := m.channels[m.active]
	incoming := m.channels[1-m.active]

	faded := crossfade && outgoing.loaded() && e.cfg.Crossfade > 0
	if faded && incoming.loaded() && outgoing.gain.Load().at(clock) < incoming.gain.Load().at(clock) {
		// Mid-crossfade: the quieter channel is replaced, the louder one
		// fades out from where it is.
		outgoing, incoming = incoming, outgoing
	}
	from := outgoing.gain.Load().at(clock)

	m.release(incoming.attach(src, format, stream, entry))

	if faded {
		n := int64(e.cfg.SampleRate.N(e.cfg.Crossfade))
		outgoing.gain.Store(&ramp{from: from, to: 0, start: clock, length: n})
		outgoing.stopAt.Store(clock + n)
		incoming.gain.Store(&ramp{from: 0, to: target, start: clock, length: n})
	} else {
		m.release(outgoing.detach())
		incoming.gain.Store(constant(target))
	}
	m.active = incoming.idx
	e.out.Unlock()

	e.log.Debug().
		Int64("entry", entry.ID).
		Int("channel", incoming.idx).
		Bool("crossfade", faded).
		Float64("gain", target).
		Msg("play")

	return nil
}

// withActive runs fn on the active channel with the output locked.
func (e *Engine) withActive(fn func(c *channel) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.out.Lock()
	defer e.out.Unlock()
	c := e.mixer.channels[e.mixer.active]
	if !c.loaded() {
		return ErrNoEntry
	}
	return fn(c)
}

// Seek repositions the active channel. The inactive channel is unaffected.
func (e *Engine) Seek(d time.Duration) error {
	return e.withActive(func(c *channel) error {
		pos := max(min(c.format.SampleRate.N(d), c.src.Len()), 0)
		if err := c.src.Seek(pos); err != nil {
			return fmt.Errorf("seek: %w", err)
		}
		threshold := min(c.format.SampleRate.N(e.cfg.Crossfade), c.src.Len()/2)
		if c.remaining() > threshold {
			c.nearEndSent = false
		}
		return nil
	})
}

// Pause pauses the active channel.
func (e *Engine) Pause() error {
	return e.withActive(func(c *channel) error {
		c.ctrl.Paused = true
		return nil
	})
}

// Resume resumes the active channel and the processing context.
func (e *Engine) Resume() error {
	e.mixer.suspended.Store(false)
	return e.withActive(func(c *channel) error {
		c.ctrl.Paused = false
		return nil
	})
}

// Stop silences and releases both channels.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.out.Lock()
	for _, c := range e.mixer.channels {
		e.mixer.release(c.detach())
	}
	e.out.Unlock()
}

// Suspend halts the processing context: the graph outputs silence and the
// sample clock stands still until Play or Resume.
func (e *Engine) Suspend() {
	e.mixer.suspended.Store(true)
}

// State returns the transport state.
func (e *Engine) State() State {
	if e.mixer.suspended.Load() {
		return Suspended
	}
	e.out.Lock()
	defer e.out.Unlock()
	c := e.mixer.channels[e.mixer.active]
	switch {
	case !c.loaded():
		return Stopped
	case c.ctrl.Paused:
		return Paused
	}
	return Playing
}

// Position returns the playback position of the active channel.
func (e *Engine) Position() time.Duration {
	e.out.Lock()
	defer e.out.Unlock()
	c := e.mixer.channels[e.mixer.active]
	if !c.loaded() {
		return 0
	}
	return c.format.SampleRate.D(c.src.Position())
}

// Duration returns the length of the active channel's source.
func (e *Engine) Duration() time.Duration {
	e.out.Lock()
	defer e.out.Unlock()
	c := e.mixer.channels[e.mixer.active]
	if !c.loaded() {
		return 0
	}
	return c.format.SampleRate.D(c.src.Len())
}

// ActiveEntry returns the entry on the active channel.
func (e *Engine) ActiveEntry() (catalog.Entry, bool) {
	e.out.Lock()
	defer e.out.Unlock()
	c := e.mixer.channels[e.mixer.active]
	return c.entry, c.loaded()
}

// SetEqualizer sets the bass, mid and treble gains in dB.
func (e *Engine) SetEqualizer(bass, mid, treble float64) {
	e.eq.SetGains(bass, mid, treble)
}

// Equalizer returns the equalizer target gains in dB.
func (e *Engine) Equalizer() (bass, mid, treble float64) {
	return e.eq.Gains()
}

// SetMasterVolume sets the linear master level.
func (e *Engine) SetMasterVolume(level float64) {
	e.master.SetLevel(level)
}

// MasterVolume returns the target master level.
func (e *Engine) MasterVolume() float64 {
	return e.master.Level()
}

// FrequencyFrame returns the analyser's byte spectrum.
func (e *Engine) FrequencyFrame() []byte {
	return e.analyser.FrequencyFrame()
}

// TimeDomainFrame returns the analyser's byte waveform.
func (e *Engine) TimeDomainFrame() []byte {
	return e.analyser.TimeDomainFrame()
}

// Close stops playback, closes the output and releases every source.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true
	e.out.Close()

	close(e.releases)
	<-e.released
	close(e.events)
	return nil
}
