package dsp

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// Fixed band layout of the three-band equalizer.
const (
	BassFreq   = 100.0
	MidFreq    = 1000.0
	TrebleFreq = 10000.0
)

// eqBlock is the number of samples between coefficient updates.
const eqBlock = 128

type eqBand struct {
	kind    filterKind
	freq    float64
	q       float64
	target  atomicFloat
	current float64
	c       coeffs
	state   [2]biquadState
}

// Equalizer applies a low shelf, a peaking and a high shelf filter in series.
// Gain changes glide toward their target with a fixed time constant.
type Equalizer struct {
	Streamer beep.Streamer

	sampleRate float64
	coef       float64
	bands      [3]eqBand
	pos        int
}

// NewEqualizer wraps s. smoothing is the time constant of gain transitions.
func NewEqualizer(s beep.Streamer, sr beep.SampleRate, smoothing time.Duration) *Equalizer {
	e := &Equalizer{
		Streamer:   s,
		sampleRate: float64(sr),
		coef:       smoothingCoef(smoothing, float64(sr), eqBlock),
		bands: [3]eqBand{
			{kind: lowShelf, freq: BassFreq, q: 1, c: identity},
			{kind: peaking, freq: MidFreq, q: 1, c: identity},
			{kind: highShelf, freq: TrebleFreq, q: 1, c: identity},
		},
	}
	return e
}

// SetGains sets the target gains in dB. Safe to call from any goroutine.
func (e *Equalizer) SetGains(bass, mid, treble float64) {
	e.bands[0].target.Store(bass)
	e.bands[1].target.Store(mid)
	e.bands[2].target.Store(treble)
}

// Gains returns the target gains in dB.
func (e *Equalizer) Gains() (bass, mid, treble float64) {
	return e.bands[0].target.Load(), e.bands[1].target.Load(), e.bands[2].target.Load()
}

func (e *Equalizer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.Streamer.Stream(samples)
	for i := range samples[:n] {
		if e.pos == 0 {
			e.updateCoefficients()
		}
		e.pos = (e.pos + 1) % eqBlock

		for b := range e.bands {
			band := &e.bands[b]
			if band.c == identity {
				continue
			}
			samples[i][0] = band.state[0].process(&band.c, samples[i][0])
			samples[i][1] = band.state[1].process(&band.c, samples[i][1])
		}
	}
	return n, ok
}

func (e *Equalizer) Err() error {
	return e.Streamer.Err()
}

// updateCoefficients advances every band one block toward its target.
func (e *Equalizer) updateCoefficients() {
	for b := range e.bands {
		band := &e.bands[b]
		target := band.target.Load()
		if band.current == target {
			continue
		}
		next := target + (band.current-target)*e.coef
		if math.Abs(next-target) < 1e-3 {
			next = target
		}
		band.current = next
		band.c = designBiquad(band.kind, band.freq, band.q, next, e.sampleRate)
	}
}
