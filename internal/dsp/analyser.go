package dsp

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gopxl/beep/v2"
	"gonum.org/v1/gonum/dsp/fourier"
)

// AnalyserConfig configures the analyser tap.
type AnalyserConfig struct {
	FFTSize   int     // power of two, defaults to 256
	Smoothing float64 // 0..1 blend with the previous frame, defaults to 0.8
	MinDB     float64 // maps to byte 0, defaults to -100
	MaxDB     float64 // maps to byte 255, defaults to -30
}

func (c AnalyserConfig) withDefaults() AnalyserConfig {
	if c.FFTSize <= 0 || c.FFTSize&(c.FFTSize-1) != 0 {
		c.FFTSize = 256
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		c.Smoothing = 0.8
	}
	if c.MinDB == 0 && c.MaxDB == 0 {
		c.MinDB, c.MaxDB = -100, -30
	}
	if c.MaxDB <= c.MinDB {
		c.MaxDB = c.MinDB + 70
	}
	return c
}

// Analyser passes audio through unchanged while keeping the most recent
// FFTSize mono samples for polling.
//
// The audio callback only TryLocks the ring, so a buffer is skipped when it
// races with a frame read.
type Analyser struct {
	Streamer beep.Streamer

	cfg AnalyserConfig

	ringMu sync.Mutex
	ring   []float64
	head   int

	frameMu  sync.Mutex
	fft      *fourier.FFT
	window   []float64
	scratch  []float64
	smoothed []float64
}

// NewAnalyser wraps s.
func NewAnalyser(s beep.Streamer, cfg AnalyserConfig) *Analyser {
	cfg = cfg.withDefaults()
	n := cfg.FFTSize
	return &Analyser{
		Streamer: s,
		cfg:      cfg,
		ring:     make([]float64, n),
		fft:      fourier.NewFFT(n),
		window:   blackman(n),
		scratch:  make([]float64, n),
		smoothed: make([]float64, n/2),
	}
}

// Bins returns the length of a frequency frame.
func (a *Analyser) Bins() int {
	return a.cfg.FFTSize / 2
}

func (a *Analyser) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = a.Streamer.Stream(samples)
	if n == 0 || !a.ringMu.TryLock() {
		return n, ok
	}
	size := len(a.ring)
	for _, s := range samples[:n] {
		a.ring[a.head] = (s[0] + s[1]) / 2
		a.head = (a.head + 1) % size
	}
	a.ringMu.Unlock()
	return n, ok
}

func (a *Analyser) Err() error {
	return a.Streamer.Err()
}

// snapshot copies the ring oldest-first into dst.
func (a *Analyser) snapshot(dst []float64) {
	a.ringMu.Lock()
	copied := copy(dst, a.ring[a.head:])
	copy(dst[copied:], a.ring[:a.head])
	a.ringMu.Unlock()
}

// FrequencyFrame returns FFTSize/2 magnitudes scaled to 0..255 between
// MinDB and MaxDB. Each call blends with the previous frame.
func (a *Analyser) FrequencyFrame() []byte {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	n := a.cfg.FFTSize
	a.snapshot(a.scratch)
	for i := range a.scratch {
		a.scratch[i] *= a.window[i]
	}

	spectrum := a.fft.Coefficients(nil, a.scratch)
	tau := a.cfg.Smoothing
	span := a.cfg.MaxDB - a.cfg.MinDB

	out := make([]byte, n/2)
	for k := range out {
		mag := cmplx.Abs(spectrum[k]) / float64(n)
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		db := linearToDB(a.smoothed[k])
		scaled := 255 * (db - a.cfg.MinDB) / span
		out[k] = byte(math.Max(0, math.Min(255, scaled)))
	}
	return out
}

// TimeDomainFrame returns the most recent FFTSize samples as bytes centred
// on 128.
func (a *Analyser) TimeDomainFrame() []byte {
	buf := make([]float64, a.cfg.FFTSize)
	a.snapshot(buf)

	out := make([]byte, len(buf))
	for i, v := range buf {
		scaled := 128 * (1 + v)
		out[i] = byte(math.Max(0, math.Min(255, scaled)))
	}
	return out
}

func blackman(n int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}
