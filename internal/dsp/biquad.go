package dsp

import "math"

type filterKind int

const (
	lowShelf filterKind = iota
	peaking
	highShelf
)

// coeffs are normalized biquad coefficients (a0 == 1).
type coeffs struct {
	b0, b1, b2, a1, a2 float64
}

var identity = coeffs{b0: 1}

// designBiquad returns RBJ cookbook coefficients. q is the shelf slope S for
// shelving filters and the quality factor Q for the peaking filter.
func designBiquad(kind filterKind, freq, q, gainDB, sampleRate float64) coeffs {
	if gainDB == 0 || freq <= 0 || freq >= sampleRate/2 {
		return identity
	}

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case peaking:
		alpha := sinw / (2 * q)
		b0 = 1 + alpha*a
		b1 = -2 * cosw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosw
		a2 = 1 - alpha/a
	case lowShelf:
		alpha := sinw / 2 * math.Sqrt((a+1/a)*(1/q-1)+2)
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosw + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cosw)
		b2 = a * ((a + 1) - (a-1)*cosw - sq)
		a0 = (a + 1) + (a-1)*cosw + sq
		a1 = -2 * ((a - 1) + (a+1)*cosw)
		a2 = (a + 1) + (a-1)*cosw - sq
	case highShelf:
		alpha := sinw / 2 * math.Sqrt((a+1/a)*(1/q-1)+2)
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cosw + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cosw)
		b2 = a * ((a + 1) + (a-1)*cosw - sq)
		a0 = (a + 1) - (a-1)*cosw + sq
		a1 = 2 * ((a - 1) - (a+1)*cosw)
		a2 = (a + 1) - (a-1)*cosw - sq
	}

	return coeffs{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// biquadState is the transposed direct form II memory of one channel.
type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(c *coeffs, x float64) float64 {
	y := c.b0*x + s.z1
	s.z1 = c.b1*x - c.a1*y + s.z2
	s.z2 = c.b2*x - c.a2*y
	return y
}
