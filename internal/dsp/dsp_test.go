package dsp

import (
	"math"
	"math/cmplx"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constStreamer emits the same stereo sample forever.
type constStreamer struct {
	v float64
}

func (c *constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{c.v, c.v}
	}
	return len(samples), true
}

func (c *constStreamer) Err() error { return nil }

// sineStreamer emits a sine of the given frequency and amplitude.
type sineStreamer struct {
	freq, amp, sr float64
	n             int
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := s.amp * math.Sin(2*math.Pi*s.freq*float64(s.n)/s.sr)
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (s *sineStreamer) Err() error { return nil }

func drain(s beep.Streamer, n int) [][2]float64 {
	buf := make([][2]float64, n)
	s.Stream(buf)
	return buf
}

// magnitudeAt evaluates |H(e^jw)| of a biquad.
func magnitudeAt(c coeffs, freq, sr float64) float64 {
	z := cmplx.Exp(complex(0, -2*math.Pi*freq/sr))
	num := complex(c.b0, 0) + complex(c.b1, 0)*z + complex(c.b2, 0)*z*z
	den := 1 + complex(c.a1, 0)*z + complex(c.a2, 0)*z*z
	return cmplx.Abs(num / den)
}

func TestDesignBiquad(t *testing.T) {
	const sr = 44100.0

	tests := []struct {
		name   string
		kind   filterKind
		freq   float64
		gain   float64
		at     float64
		wantDB float64
	}{
		{"low shelf boost at DC", lowShelf, BassFreq, 6, 10, 6},
		{"low shelf leaves highs", lowShelf, BassFreq, 6, 15000, 0},
		{"peaking boost at centre", peaking, MidFreq, 9, MidFreq, 9},
		{"peaking cut at centre", peaking, MidFreq, -9, MidFreq, -9},
		{"peaking leaves DC", peaking, MidFreq, 9, 5, 0},
		{"high shelf cut at top", highShelf, TrebleFreq, -6, 20000, -6},
		{"high shelf leaves lows", highShelf, TrebleFreq, -6, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := designBiquad(tt.kind, tt.freq, 1, tt.gain, sr)
			got := linearToDB(magnitudeAt(c, tt.at, sr))
			assert.InDelta(t, tt.wantDB, got, 0.6)
		})
	}
}

func TestDesignBiquad_FlatIsIdentity(t *testing.T) {
	assert.Equal(t, identity, designBiquad(peaking, MidFreq, 1, 0, 44100))
}

func TestEqualizer_FlatPassesThrough(t *testing.T) {
	src := &sineStreamer{freq: 440, amp: 0.5, sr: 44100}
	ref := &sineStreamer{freq: 440, amp: 0.5, sr: 44100}
	eq := NewEqualizer(src, 44100, 50*time.Millisecond)

	got := drain(eq, 1024)
	want := drain(ref, 1024)
	assert.Equal(t, want, got)
}

func TestEqualizer_GainsGlide(t *testing.T) {
	const sr = 44100
	eq := NewEqualizer(&constStreamer{v: 0.25}, sr, 50*time.Millisecond)
	eq.SetGains(6, 0, 0)

	b, m, tr := eq.Gains()
	assert.Equal(t, [3]float64{6, 0, 0}, [3]float64{b, m, tr})

	drain(eq, eqBlock)
	first := eq.bands[0].current
	assert.Greater(t, first, 0.0)
	assert.Less(t, first, 6.0, "first block must not jump to the target")

	drain(eq, sr) // one second is 20 time constants
	assert.Equal(t, 6.0, eq.bands[0].current)

	// DC through a +6 dB low shelf settles at double amplitude.
	out := drain(eq, 4096)
	assert.InDelta(t, 0.25*dbToLinear(6), out[len(out)-1][0], 1e-3)
}

func TestAnalyser_PassThrough(t *testing.T) {
	a := NewAnalyser(&constStreamer{v: 0.3}, AnalyserConfig{})
	out := drain(a, 64)
	for _, s := range out {
		assert.Equal(t, [2]float64{0.3, 0.3}, s)
	}
}

func TestAnalyser_SilenceFrames(t *testing.T) {
	a := NewAnalyser(&constStreamer{v: 0}, AnalyserConfig{})
	drain(a, 512)

	freq := a.FrequencyFrame()
	require.Len(t, freq, 128)
	for _, v := range freq {
		assert.Zero(t, v)
	}

	td := a.TimeDomainFrame()
	require.Len(t, td, 256)
	for _, v := range td {
		assert.Equal(t, byte(128), v)
	}
}

func TestAnalyser_PeakBin(t *testing.T) {
	// 25600 Hz over 256 points gives 100 Hz bins; 1 kHz lands on bin 10.
	src := &sineStreamer{freq: 1000, amp: 0.05, sr: 25600}
	a := NewAnalyser(src, AnalyserConfig{FFTSize: 256})
	drain(a, 1024)

	var frame []byte
	for range 20 {
		frame = a.FrequencyFrame()
	}
	require.Len(t, frame, a.Bins())

	peak := 0
	for k := range frame {
		if frame[k] > frame[peak] {
			peak = k
		}
	}
	assert.Equal(t, 10, peak)
	assert.Greater(t, frame[10], byte(200))
}

func TestAnalyserConfig_Defaults(t *testing.T) {
	cfg := AnalyserConfig{FFTSize: 300, Smoothing: 2}.withDefaults()
	assert.Equal(t, 256, cfg.FFTSize)
	assert.Equal(t, 0.8, cfg.Smoothing)
	assert.Equal(t, -100.0, cfg.MinDB)
	assert.Equal(t, -30.0, cfg.MaxDB)

	cfg = AnalyserConfig{FFTSize: 1024, Smoothing: 0.5, MinDB: -90, MaxDB: -10}.withDefaults()
	assert.Equal(t, 1024, cfg.FFTSize)
	assert.Equal(t, 0.5, cfg.Smoothing)
}

func TestLimiterCurve(t *testing.T) {
	// Below the knee the curve is the identity.
	assert.Equal(t, -30.0, curve(-30))
	// Above the knee it is threshold plus slope 1/ratio.
	assert.InDelta(t, LimiterThresholdDB+30/LimiterRatio, curve(29), 1e-9)
	// Continuous at both knee edges.
	assert.InDelta(t, -21.0, curve(-21), 1e-9)
	assert.InDelta(t, LimiterThresholdDB+20/LimiterRatio, curve(19), 1e-9)
}

func TestLimiter_QuietSignalUntouched(t *testing.T) {
	l := NewLimiter(&constStreamer{v: 0.05}, 44100)
	out := drain(l, 256)
	assert.Equal(t, 0.05, out[255][0])
}

func TestLimiter_InstantAttack(t *testing.T) {
	l := NewLimiter(&constStreamer{v: 2.0}, 44100)
	out := drain(l, 1)

	x := linearToDB(2.0)
	want := 2.0 * dbToLinear(curve(x)-x)
	assert.InDelta(t, want, out[0][0], 1e-9)
	assert.Less(t, out[0][0], 1.0)
}

func TestLimiter_Release(t *testing.T) {
	src := &constStreamer{v: 2.0}
	l := NewLimiter(src, 44100)
	drain(l, 128)

	src.v = 0.05
	out := drain(l, 1)
	assert.Less(t, out[0][0], 0.05, "gain reduction holds right after a loud burst")

	drain(l, 44100*2)
	out = drain(l, 1)
	assert.InDelta(t, 0.05, out[0][0], 1e-4)
}

func TestGain_Glides(t *testing.T) {
	g := NewGain(&constStreamer{v: 1}, 44100, 1.0, 50*time.Millisecond)
	g.SetLevel(0)
	assert.Equal(t, 0.0, g.Level())

	out := drain(g, 4410)
	for i := 1; i < len(out); i++ {
		if out[i][0] > out[i-1][0] {
			t.Fatalf("gain rose at sample %d", i)
		}
	}
	assert.Greater(t, out[0][0], 0.9, "no step on the first sample")

	drain(g, 44100)
	out = drain(g, 1)
	assert.Zero(t, out[0][0])
}

func TestGain_NegativeClamped(t *testing.T) {
	g := NewGain(&constStreamer{v: 1}, 44100, 1.0, 0)
	g.SetLevel(-3)
	assert.Zero(t, g.Level())
}
