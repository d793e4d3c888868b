// Package dsp holds the shared processing stages of the playback graph.
//
// Every stage is a beep.Streamer wrapping the stage before it. Parameters are
// published through atomics so control calls never block the audio callback.
package dsp

import (
	"math"
	"sync/atomic"
	"time"
)

// atomicFloat is a float64 readable from the audio callback without locking.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// smoothingCoef returns the one-pole coefficient that moves a value 63% of
// the way to its target after tau, when applied every step samples.
func smoothingCoef(tau time.Duration, sampleRate float64, step int) float64 {
	if tau <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-float64(step) / (tau.Seconds() * sampleRate))
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func linearToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
