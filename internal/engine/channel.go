package engine

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/tides/internal/catalog"
)

// ramp is an immutable linear gain schedule over the mixer's sample clock.
// Before start it holds from, after start+length it holds to.
type ramp struct {
	from, to float64
	start    int64
	length   int64
}

func constant(v float64) *ramp {
	return &ramp{from: v, to: v}
}

func (r *ramp) at(clock int64) float64 {
	switch {
	case r.length <= 0 || clock >= r.start+r.length:
		return r.to
	case clock <= r.start:
		return r.from
	}
	return r.from + (r.to-r.from)*float64(clock-r.start)/float64(r.length)
}

// channel is one of the two playback slots. Source fields are only touched
// with the output locked; gain and stopAt are published atomically.
type channel struct {
	idx int

	src    beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	entry  catalog.Entry

	gain   atomic.Pointer[ramp]
	stopAt atomic.Int64 // mixer clock at which to release the source, -1 for never

	nearEndSent bool
	buf         [][2]float64
}

func newChannel(idx int) *channel {
	c := &channel{idx: idx}
	c.gain.Store(constant(0))
	c.stopAt.Store(-1)
	return c
}

func (c *channel) loaded() bool {
	return c.src != nil
}

// attach installs a new source, returning the previous one for release.
func (c *channel) attach(src beep.StreamSeekCloser, format beep.Format, stream beep.Streamer, entry catalog.Entry) beep.StreamSeekCloser {
	old := c.detach()
	c.src = src
	c.format = format
	c.ctrl = &beep.Ctrl{Streamer: stream}
	c.entry = entry
	c.nearEndSent = false
	return old
}

// detach removes the source and silences the channel.
func (c *channel) detach() beep.StreamSeekCloser {
	old := c.src
	c.src = nil
	c.ctrl = nil
	c.entry = catalog.Entry{}
	c.nearEndSent = false
	c.gain.Store(constant(0))
	c.stopAt.Store(-1)
	return old
}

// remaining returns the samples left in the source, in source rate.
func (c *channel) remaining() int {
	return max(c.src.Len()-c.src.Position(), 0)
}
