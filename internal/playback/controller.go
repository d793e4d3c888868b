// Package playback ties the queue to the engine: it applies repeat and
// shuffle policy, auto-advances on the engine's near-end signal and proposes
// play-count increments.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/engine"
	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/queue"
)

var (
	ErrQueueEmpty = errors.New("queue is empty")
	ErrNoIndex    = errors.New("queue index out of range")
)

// restartThreshold is how far into a track Previous restarts it instead of
// going back.
const restartThreshold = 3 * time.Second

// Player is the engine surface the controller drives.
type Player interface {
	Play(ctx context.Context, entry catalog.Entry, crossfade bool) error
	Pause() error
	Resume() error
	Stop()
	Seek(d time.Duration) error
	State() engine.State
	Position() time.Duration
	Events() <-chan engine.Event
}

// Verify the engine satisfies Player at compile time.
var _ Player = (*engine.Engine)(nil)

// Options configures a Controller.
type Options struct {
	// Crossfade enables crossfaded transitions and near-end auto-advance.
	Crossfade bool
	// Seed seeds shuffle picks. Zero picks a random seed.
	Seed uint64
}

// Controller is the playback controller.
type Controller struct {
	mu sync.Mutex

	player  Player
	queue   *queue.Manager
	mutator catalog.Mutator
	log     zerolog.Logger
	opts    Options
	rng     *rand.Rand

	// gen counts successful starts; handled is the gen whose near-end
	// was already acted on.
	gen     uint64
	handled uint64
	last    *catalog.Entry

	subs   []*Subscription
	subsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a controller and starts consuming engine events.
func New(p Player, q *queue.Manager, m catalog.Mutator, opts Options, log zerolog.Logger) *Controller {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		player:  p,
		queue:   q,
		mutator: m,
		log:     log,
		opts:    opts,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		handled: ^uint64(0),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.wg.Go(c.run)
	return c
}

func (c *Controller) run() {
	events := c.player.Events()
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev engine.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	// Events queued before a manual switch belong to an older track.
	if c.last == nil || ev.Entry.ID != c.last.ID {
		return
	}

	switch ev.Kind {
	case engine.EventNearEnd:
		if !c.opts.Crossfade || c.handled == c.gen {
			return
		}
		c.handled = c.gen
		c.advanceLocked(true)
	case engine.EventEnded:
		if ev.Err != nil {
			c.emitError("decode", ev.Entry.Path, ev.Err)
		}
		if c.handled == c.gen {
			return
		}
		c.handled = c.gen
		c.advanceLocked(false)
	}
}

// advanceLocked moves to the next entry according to repeat and shuffle.
// With repeat off, the end of the queue stops playback. Entries that fail to
// load are skipped, at most once around the queue.
func (c *Controller) advanceLocked(crossfade bool) {
	snap := c.queue.Snapshot()
	n := len(snap.Entries)
	for attempt := range n {
		index, ok := c.nextIndex(snap, attempt > 0)
		if !ok {
			c.log.Debug().Msg("end of queue")
			return
		}
		if err := c.queue.JumpTo(index); err != nil {
			c.emitError("advance", "", err)
		}
		e := c.queue.Current()
		if e == nil {
			return
		}
		if c.startLocked(c.ctx, *e, index, crossfade, true) == nil {
			return
		}
		snap = c.queue.Snapshot()
		if len(snap.Entries) == 0 {
			return
		}
	}
}

// nextIndex picks the entry after snap's cursor. Once skipping, repeat-one
// steps forward like repeat-all instead of retrying the same entry.
func (c *Controller) nextIndex(snap queue.Snapshot, skipping bool) (int, bool) {
	n := len(snap.Entries)
	switch {
	case snap.Repeat == playlist.RepeatOne && snap.Current() != nil && !skipping:
		return snap.Cursor, true
	case snap.Shuffle:
		return c.shufflePick(snap.Cursor, n), true
	case snap.Cursor >= n-1 && snap.Repeat == playlist.RepeatOff:
		return 0, false
	case snap.Cursor < 0 || snap.Cursor >= n:
		return 0, true
	default:
		return (snap.Cursor + 1) % n, true
	}
}

func (c *Controller) shufflePick(cursor, n int) int {
	if n == 1 {
		return 0
	}
	for {
		i := c.rng.IntN(n)
		if i != cursor {
			return i
		}
	}
}

// startLocked plays e and announces it. Load failures leave the previous
// track audible and are reported through the Error channel.
func (c *Controller) startLocked(ctx context.Context, e catalog.Entry, index int, crossfade, auto bool) error {
	fade := crossfade && c.opts.Crossfade && c.player.State() == engine.Playing
	if err := c.player.Play(ctx, e, fade); err != nil {
		c.emitError("play", e.Path, err)
		return fmt.Errorf("play %q: %w", e.Title, err)
	}

	if c.mutator != nil {
		if err := c.mutator.IncrementPlayCount(e.ID); err != nil {
			c.log.Warn().Err(err).Int64("entry", e.ID).Msg("increment play count")
		}
	}

	prev := c.last
	cur := e
	c.last = &cur
	c.gen++
	c.broadcast(func(s *Subscription) {
		s.sendTrack(TrackChange{Previous: prev, Current: e, Index: index, Auto: auto})
	})
	return nil
}

// PlayIndex moves the cursor to index and plays it.
func (c *Controller) PlayIndex(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.queue.Len()
	if n == 0 {
		return ErrQueueEmpty
	}
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %d", ErrNoIndex, index)
	}
	jumpErr := c.queue.JumpTo(index)
	e := c.queue.Current()
	if err := c.startLocked(ctx, *e, index, true, false); err != nil {
		return err
	}
	return jumpErr
}

// PlayEntry plays the first queued entry with the given id.
func (c *Controller) PlayEntry(ctx context.Context, id int64) error {
	snap := c.queue.Snapshot()
	for i := range snap.Entries {
		if snap.Entries[i].ID == id {
			return c.PlayIndex(ctx, i)
		}
	}
	if len(snap.Entries) == 0 {
		return ErrQueueEmpty
	}
	return fmt.Errorf("%w: entry %d not queued", ErrNoIndex, id)
}

// Next skips to the next entry. It wraps at the end regardless of repeat;
// with shuffle on it picks another entry at random.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.queue.Snapshot()
	if len(snap.Entries) == 0 {
		return ErrQueueEmpty
	}

	var e *catalog.Entry
	var err error
	if snap.Shuffle {
		err = c.queue.JumpTo(c.shufflePick(snap.Cursor, len(snap.Entries)))
		e = c.queue.Current()
	} else {
		e, err = c.queue.Next()
	}
	if e == nil {
		return ErrQueueEmpty
	}
	if serr := c.startLocked(ctx, *e, c.queue.Snapshot().Cursor, true, false); serr != nil {
		return serr
	}
	return err
}

// Previous restarts the current track when past restartThreshold, and
// otherwise moves back one entry with wrap-around.
func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue.Len() == 0 {
		return ErrQueueEmpty
	}
	if c.player.State() != engine.Stopped && c.player.Position() > restartThreshold {
		return c.player.Seek(0)
	}

	e, err := c.queue.Prev()
	if e == nil {
		return ErrQueueEmpty
	}
	if serr := c.startLocked(ctx, *e, c.queue.Snapshot().Cursor, true, false); serr != nil {
		return serr
	}
	return err
}

// TogglePause pauses, resumes, or starts the current entry when stopped.
func (c *Controller) TogglePause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.player.State() {
	case engine.Playing:
		return c.player.Pause()
	case engine.Paused, engine.Suspended:
		return c.player.Resume()
	}

	snap := c.queue.Snapshot()
	if len(snap.Entries) == 0 {
		return ErrQueueEmpty
	}
	var jumpErr error
	if snap.Current() == nil {
		jumpErr = c.queue.JumpTo(0)
		snap.Cursor = 0
	}
	if err := c.startLocked(ctx, snap.Entries[snap.Cursor], snap.Cursor, false, false); err != nil {
		return err
	}
	return jumpErr
}

// SeekTo repositions the current track.
func (c *Controller) SeekTo(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.player.Seek(d); err != nil {
		return err
	}
	c.broadcast(func(s *Subscription) {
		s.sendPosition(PositionChange{Position: d})
	})
	return nil
}

// Stop stops playback. The queue is unchanged.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player.Stop()
}

// SetRepeat sets the repeat mode.
func (c *Controller) SetRepeat(mode playlist.RepeatMode) error {
	return c.queue.SetRepeat(mode)
}

// SetShuffle sets shuffle on or off.
func (c *Controller) SetShuffle(on bool) error {
	return c.queue.SetShuffle(on)
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

func (c *Controller) broadcast(fn func(s *Subscription)) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, s := range c.subs {
		fn(s)
	}
}

func (c *Controller) emitError(op, path string, err error) {
	c.log.Warn().Err(err).Str("op", op).Str("path", path).Msg("playback error")
	c.broadcast(func(s *Subscription) {
		s.sendError(ErrorEvent{Operation: op, Path: path, Err: err})
	})
}

// Close stops the event loop and signals subscribers. It does not close the
// player.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
	return nil
}
