package lrclib

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/enrich"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestClient_Get(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get", r.URL.Path)
		assert.Equal(t, "Artist", r.URL.Query().Get("artist_name"))
		assert.Equal(t, "Song", r.URL.Query().Get("track_name"))
		assert.Equal(t, "Album", r.URL.Query().Get("album_name"))
		assert.Equal(t, "181", r.URL.Query().Get("duration"))
		assert.Contains(t, r.Header.Get("User-Agent"), "tides")
		_, _ = w.Write([]byte(`{"id":1,"trackName":"Song","artistName":"Artist","duration":181,"syncedLyrics":"[00:01.00]hi"}`))
	})

	q := enrich.Query{Artist: "Artist", Title: "Song", Album: "Album", Duration: 180*time.Second + 700*time.Millisecond}
	r, err := c.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]hi", r.SyncedLyrics)
	assert.Equal(t, 181*time.Second, r.length())
}

func TestClient_Get_OmitsUnsetFields(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("album_name"))
		assert.False(t, r.URL.Query().Has("duration"))
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	_, err := c.Get(context.Background(), enrich.Query{Artist: "a", Title: "b"})
	require.NoError(t, err)
}

func TestClient_Get_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Get(context.Background(), enrich.Query{Artist: "a", Title: "b"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Get_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Get(context.Background(), enrich.Query{Artist: "a", Title: "b"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_Search(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Song", r.URL.Query().Get("track_name"))
		assert.False(t, r.URL.Query().Has("duration"))
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	})

	results, err := c.Search(context.Background(), enrich.Query{Artist: "Artist", Title: "Song", Duration: time.Minute})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		get    int
		body   string
		search string
		want   *enrich.Result
	}{
		{
			name: "found",
			get:  http.StatusOK,
			body: `{"trackName":"Song","artistName":"Artist","albumName":"LP","plainLyrics":"la la"}`,
			want: &enrich.Result{Title: "Song", Artist: "Artist", Album: "LP", PlainLyrics: "la la"},
		},
		{
			name: "instrumental",
			get:  http.StatusOK,
			body: `{"trackName":"Song","instrumental":true}`,
			want: &enrich.Result{},
		},
		{
			name:   "not found",
			get:    http.StatusNotFound,
			search: `[]`,
			want:   nil,
		},
		{
			name: "search fallback skips wrong length and empty hits",
			get:  http.StatusNotFound,
			search: `[
				{"trackName":"Song (Live)","duration":320,"syncedLyrics":"[00:01.00]x"},
				{"trackName":"Song","duration":200},
				{"trackName":"Song","artistName":"Artist","duration":201,"syncedLyrics":"[00:02.00]y"}
			]`,
			want: &enrich.Result{Title: "Song", Artist: "Artist", SyncedLyrics: "[00:02.00]y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/search" {
					_, _ = w.Write([]byte(tt.search))
					return
				}
				w.WriteHeader(tt.get)
				_, _ = w.Write([]byte(tt.body))
			})

			q := enrich.Query{Title: "Song", Artist: "Artist", Duration: 200 * time.Second}
			got, err := c.Lookup(context.Background(), q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Lookup_SearchNotFoundIsNoResult(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	got, err := c.Lookup(context.Background(), enrich.Query{Title: "Song", Artist: "Artist"})
	require.NoError(t, err)
	assert.Nil(t, got)
}
