// Package lrclib looks up lyrics on lrclib.net.
package lrclib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/tides/internal/enrich"
)

// ErrNotFound is returned by Get when lrclib has no record for the query.
var ErrNotFound = errors.New("lyrics not found")

const (
	defaultBaseURL = "https://lrclib.net/api"
	userAgent      = "tides/1.0 (https://github.com/llehouerou/tides)"

	// durationSlack is how far a search hit's length may be from the
	// query's and still count as the same recording.
	durationSlack = 2 * time.Second
)

// Client talks to an lrclib-compatible server.
type Client struct {
	http *http.Client
	base string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another lrclib-compatible server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		base: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record is one lrclib track.
type Record struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"` // seconds
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func (r *Record) length() time.Duration {
	return time.Duration(r.Duration * float64(time.Second))
}

// Get fetches the exact record for q. Album and duration narrow the match
// when set.
func (c *Client) Get(ctx context.Context, q enrich.Query) (*Record, error) {
	var rec Record
	if err := c.fetch(ctx, "get", params(q), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Search lists records whose fields match q. Duration is not sent; lrclib's
// search ignores it.
func (c *Client) Search(ctx context.Context, q enrich.Query) ([]Record, error) {
	p := params(q)
	p.Del("duration")
	var recs []Record
	if err := c.fetch(ctx, "search", p, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Lookup implements enrich.Service. When the exact lookup misses it falls
// back to a search and keeps the first hit of matching length. A missing
// track yields a nil result and no error. Instrumental tracks yield an empty
// result.
func (c *Client) Lookup(ctx context.Context, q enrich.Query) (*enrich.Result, error) {
	rec, err := c.Get(ctx, q)
	if errors.Is(err, ErrNotFound) {
		rec, err = c.closest(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil //nolint:nilnil // not found is not an error for enrichment
	}
	if rec.Instrumental {
		return &enrich.Result{}, nil
	}
	return &enrich.Result{
		Title:        rec.TrackName,
		Artist:       rec.ArtistName,
		Album:        rec.AlbumName,
		SyncedLyrics: rec.SyncedLyrics,
		PlainLyrics:  rec.PlainLyrics,
	}, nil
}

func (c *Client) closest(ctx context.Context, q enrich.Query) (*Record, error) {
	recs, err := c.Search(ctx, q)
	if errors.Is(err, ErrNotFound) {
		return nil, nil //nolint:nilnil // no hits
	}
	if err != nil {
		return nil, err
	}
	for i := range recs {
		r := &recs[i]
		if r.SyncedLyrics == "" && r.PlainLyrics == "" && !r.Instrumental {
			continue
		}
		if q.Duration > 0 && math.Abs(float64(r.length()-q.Duration)) > float64(durationSlack) {
			continue
		}
		return r, nil
	}
	return nil, nil //nolint:nilnil // no usable hit
}

func params(q enrich.Query) url.Values {
	p := url.Values{}
	p.Set("artist_name", q.Artist)
	p.Set("track_name", q.Title)
	if q.Album != "" {
		p.Set("album_name", q.Album)
	}
	if q.Duration > 0 {
		p.Set("duration", strconv.FormatInt(int64(q.Duration.Round(time.Second)/time.Second), 10))
	}
	return p
}

func (c *Client) fetch(ctx context.Context, endpoint string, p url.Values, into any) error {
	u := c.base + "/" + endpoint + "?" + p.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lrclib %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("lrclib %s: unexpected status %s", endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("lrclib %s: decode: %w", endpoint, err)
	}
	return nil
}
