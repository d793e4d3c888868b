package engine

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

// mixer is the head of the graph: it sums both channels under their gain
// ramps and advances the sample clock. It always fills the whole buffer so
// the device never starves.
type mixer struct {
	channels  [2]*channel
	active    int
	crossfade time.Duration

	clock     atomic.Int64
	suspended atomic.Bool

	events   chan<- Event
	releases chan<- beep.StreamSeekCloser
}

func (m *mixer) Stream(samples [][2]float64) (n int, ok bool) {
	clear(samples)
	if m.suspended.Load() {
		return len(samples), true
	}
	clock := m.clock.Load()
	for _, c := range m.channels {
		if c.loaded() {
			m.mix(c, samples, clock)
		}
	}
	m.clock.Add(int64(len(samples)))
	return len(samples), true
}

func (m *mixer) Err() error {
	return nil
}

func (m *mixer) mix(c *channel, out [][2]float64, clock int64) {
	n := len(out)
	if cap(c.buf) < n {
		c.buf = make([][2]float64, n)
	}
	buf := c.buf[:n]

	got, ok := c.ctrl.Stream(buf)
	r := c.gain.Load()
	for i := range buf[:got] {
		g := r.at(clock + int64(i))
		out[i][0] += buf[i][0] * g
		out[i][1] += buf[i][1] * g
	}

	active := c.idx == m.active

	if stop := c.stopAt.Load(); stop >= 0 && clock+int64(n) >= stop {
		m.release(c.detach())
		return
	}

	if !ok || got < n {
		ev := Event{Kind: EventEnded, Entry: c.entry, Err: c.src.Err()}
		m.release(c.detach())
		if active {
			m.emit(ev)
		}
		return
	}

	if active && !c.nearEndSent && !c.ctrl.Paused && c.src.Len() > 0 {
		threshold := min(c.format.SampleRate.N(m.crossfade), c.src.Len()/2)
		if c.remaining() <= threshold {
			c.nearEndSent = true
			m.emit(Event{Kind: EventNearEnd, Entry: c.entry})
		}
	}
}

// emit never blocks; events are dropped when nobody drains them.
func (m *mixer) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// release hands a detached source to the releaser goroutine.
func (m *mixer) release(src beep.StreamSeekCloser) {
	if src == nil {
		return
	}
	select {
	case m.releases <- src:
	default:
		go src.Close() //nolint:errcheck // releaser backlog, best effort
	}
}
