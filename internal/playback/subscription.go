package playback

import "sync/atomic"

const eventBufferSize = 16

// Subscription carries controller events to one consumer. Sends never
// block the controller: an event is dropped when its channel is full.
type Subscription struct {
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	Error           <-chan ErrorEvent
	// Done is closed when the controller shuts down.
	Done <-chan struct{}

	tracks    chan TrackChange
	positions chan PositionChange
	errs      chan ErrorEvent
	done      chan struct{}
	dropped   atomic.Int64
}

func newSubscription() *Subscription {
	s := &Subscription{
		tracks:    make(chan TrackChange, eventBufferSize),
		positions: make(chan PositionChange, eventBufferSize),
		errs:      make(chan ErrorEvent, eventBufferSize),
		done:      make(chan struct{}),
	}
	s.TrackChanged, s.PositionChanged, s.Error, s.Done = s.tracks, s.positions, s.errs, s.done
	return s
}

// Dropped returns how many events were discarded because the consumer
// fell behind.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func offer[T any](s *Subscription, ch chan T, v T) {
	select {
	case ch <- v:
	default:
		s.dropped.Add(1)
	}
}

func (s *Subscription) sendTrack(e TrackChange)       { offer(s, s.tracks, e) }
func (s *Subscription) sendPosition(e PositionChange) { offer(s, s.positions, e) }
func (s *Subscription) sendError(e ErrorEvent)        { offer(s, s.errs, e) }

func (s *Subscription) close() {
	close(s.done)
}
