package dsp

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// Limiter settings. They are fixed; the limiter only guards against clipping
// from crossfade overlap and equalizer boost.
const (
	LimiterThresholdDB = -1.0
	LimiterRatio       = 12.0
	LimiterKneeDB      = 40.0
	LimiterRelease     = 250 * time.Millisecond
)

// Limiter is a peak compressor with a soft knee, instant attack and
// exponential release.
type Limiter struct {
	Streamer beep.Streamer

	release   float64
	reduction float64 // current gain reduction in dB, always <= 0
}

// NewLimiter wraps s.
func NewLimiter(s beep.Streamer, sr beep.SampleRate) *Limiter {
	return &Limiter{
		Streamer: s,
		release:  smoothingCoef(LimiterRelease, float64(sr), 1),
	}
}

// curve is the static soft-knee transfer function in dB.
func curve(x float64) float64 {
	const t, r, w = LimiterThresholdDB, LimiterRatio, LimiterKneeDB
	over := x - t
	switch {
	case 2*over < -w:
		return x
	case 2*math.Abs(over) <= w:
		d := over + w/2
		return x + (1/r-1)*d*d/(2*w)
	default:
		return t + over/r
	}
}

func (l *Limiter) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = l.Streamer.Stream(samples)
	for i := range samples[:n] {
		peak := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))

		want := 0.0
		if peak > 0 {
			x := linearToDB(peak)
			want = curve(x) - x
		}

		if want < l.reduction {
			l.reduction = want
		} else {
			l.reduction = want + (l.reduction-want)*l.release
		}

		if l.reduction < 0 {
			g := dbToLinear(l.reduction)
			samples[i][0] *= g
			samples[i][1] *= g
		}
	}
	return n, ok
}

func (l *Limiter) Err() error {
	return l.Streamer.Err()
}

// Reduction returns the current gain reduction in dB. Not safe for
// concurrent use with Stream; intended for tests and diagnostics.
func (l *Limiter) Reduction() float64 {
	return l.reduction
}
