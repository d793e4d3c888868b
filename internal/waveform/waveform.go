// Package waveform extracts per-bar peak profiles of playback resources.
//
// Results are cached per resource and bar count for the life of the
// Extractor. Undecodable resources get a deterministic synthetic profile so
// visual consumers never see a hard failure.
package waveform

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var errEmpty = errors.New("resource has no audio")

// Decoder opens a resource for full decoding.
type Decoder interface {
	Open(locator string) (beep.StreamSeekCloser, beep.Format, error)
}

// Extractor computes and caches waveform peaks.
type Extractor struct {
	dec Decoder
	log zerolog.Logger

	group singleflight.Group

	mu      sync.Mutex
	cache   map[string][]float64
	cancels map[string]context.CancelFunc
}

// New creates an Extractor.
func New(dec Decoder, log zerolog.Logger) *Extractor {
	return &Extractor{
		dec:     dec,
		log:     log.With().Str("component", "waveform").Logger(),
		cache:   make(map[string][]float64),
		cancels: make(map[string]context.CancelFunc),
	}
}

func cacheKey(resource string, bars int) string {
	return strconv.Itoa(bars) + "\x00" + resource
}

// Peaks returns bars peak magnitudes in [0, 1] for resource.
//
// Concurrent requests for the same key share one decode. The only error is
// the context's, when ctx ends or the key is cancelled while waiting; a
// decode failure yields the synthetic profile instead.
func (x *Extractor) Peaks(ctx context.Context, resource string, bars int) ([]float64, error) {
	if bars <= 0 {
		return []float64{}, nil
	}
	key := cacheKey(resource, bars)

	x.mu.Lock()
	if peaks, ok := x.cache[key]; ok {
		x.mu.Unlock()
		return clone(peaks), nil
	}
	x.mu.Unlock()

	ch := x.group.DoChan(key, func() (any, error) {
		return x.load(resource, bars, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		peaks, _ := res.Val.([]float64)
		return clone(peaks), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts an in-flight extraction for the key. Waiters receive
// context.Canceled and nothing is cached.
func (x *Extractor) Cancel(resource string, bars int) {
	key := cacheKey(resource, bars)
	x.mu.Lock()
	cancel, ok := x.cancels[key]
	x.mu.Unlock()
	if ok {
		cancel()
	}
}

// Cached reports whether a profile for the key is cached.
func (x *Extractor) Cached(resource string, bars int) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.cache[cacheKey(resource, bars)]
	return ok
}

// load runs inside the flight. A flight that finished between the caller's
// cache miss and DoChan has already stored the key.
func (x *Extractor) load(resource string, bars int, key string) (any, error) {
	x.mu.Lock()
	peaks, ok := x.cache[key]
	x.mu.Unlock()
	if ok {
		return peaks, nil
	}
	return x.extract(resource, bars, key)
}

func (x *Extractor) extract(resource string, bars int, key string) (any, error) {
	ctx, cancel := context.WithCancel(context.Background())
	x.mu.Lock()
	x.cancels[key] = cancel
	x.mu.Unlock()
	defer func() {
		x.mu.Lock()
		delete(x.cancels, key)
		x.mu.Unlock()
		cancel()
	}()

	peaks, err := x.decode(ctx, resource, bars)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		x.log.Debug().Err(err).Str("resource", resource).Msg("waveform decode failed, using fallback")
		peaks = Fallback(resource, bars)
	}

	x.mu.Lock()
	x.cache[key] = peaks
	x.mu.Unlock()
	return peaks, nil
}

// chunk is the decode read size in frames.
const chunk = 4096

func (x *Extractor) decode(ctx context.Context, resource string, bars int) ([]float64, error) {
	s, _, err := x.dec.Open(resource)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if total := s.Len(); total > 0 {
		return reduce(ctx, s, total, bars)
	}
	return collect(ctx, s, bars)
}

// reduce streams a source of known length straight into buckets.
func reduce(ctx context.Context, s beep.Streamer, total, bars int) ([]float64, error) {
	peaks := make([]float64, bars)
	buf := make([][2]float64, chunk)
	pos := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok := s.Stream(buf)
		for i := range buf[:n] {
			b := min((pos+i)*bars/total, bars-1)
			peaks[b] = max(peaks[b], peak(buf[i]))
		}
		pos += n
		if !ok || n == 0 {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if pos == 0 {
		return nil, errEmpty
	}
	return peaks, nil
}

// collect buffers a source of unknown length before bucketing it.
func collect(ctx context.Context, s beep.Streamer, bars int) ([]float64, error) {
	var mono []float64
	buf := make([][2]float64, chunk)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok := s.Stream(buf)
		for i := range buf[:n] {
			mono = append(mono, peak(buf[i]))
		}
		if !ok || n == 0 {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(mono) == 0 {
		return nil, errEmpty
	}

	peaks := make([]float64, bars)
	for i, v := range mono {
		b := min(i*bars/len(mono), bars-1)
		peaks[b] = max(peaks[b], v)
	}
	return peaks, nil
}

func peak(s [2]float64) float64 {
	return min(math.Max(math.Abs(s[0]), math.Abs(s[1])), 1)
}

// Fallback returns a deterministic pseudo-random profile seeded by the
// resource identity. Values lie in [0.15, 1].
func Fallback(resource string, bars int) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(resource))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	peaks := make([]float64, max(bars, 0))
	for i := range peaks {
		peaks[i] = 0.15 + 0.85*rng.Float64()
	}
	return peaks
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}
