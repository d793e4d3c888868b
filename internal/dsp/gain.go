package dsp

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Gain multiplies the signal by a level that glides toward its target.
type Gain struct {
	Streamer beep.Streamer

	target  atomicFloat
	current float64
	coef    float64
}

// NewGain wraps s starting at level. smoothing is the time constant of level
// changes.
func NewGain(s beep.Streamer, sr beep.SampleRate, level float64, smoothing time.Duration) *Gain {
	g := &Gain{
		Streamer: s,
		current:  level,
		coef:     smoothingCoef(smoothing, float64(sr), 1),
	}
	g.target.Store(level)
	return g
}

// SetLevel sets the target linear level. Safe to call from any goroutine.
func (g *Gain) SetLevel(level float64) {
	g.target.Store(max(level, 0))
}

// Level returns the target linear level.
func (g *Gain) Level() float64 {
	return g.target.Load()
}

func (g *Gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.Streamer.Stream(samples)
	target := g.target.Load()
	for i := range samples[:n] {
		if g.current != target {
			g.current = target + (g.current-target)*g.coef
			if d := g.current - target; d < 1e-6 && d > -1e-6 {
				g.current = target
			}
		}
		samples[i][0] *= g.current
		samples[i][1] *= g.current
	}
	return n, ok
}

func (g *Gain) Err() error {
	return g.Streamer.Err()
}
