package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/catalog"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"  Don't   Stop  ", "dont stop"},
		{"Café-Noir", "cafénoir"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearch_ExactTitleRanksFirst(t *testing.T) {
	entries := []catalog.Entry{
		{ID: 1, Title: "Aurora Borealis"},
		{ID: 2, Title: "Under the Aurora"},
		{ID: 3, Title: "Aurora"},
		{ID: 4, Title: "Nothing", Album: "Aurora Sessions"},
	}
	res := Search(entries, "Aurora")

	require.NotNil(t, res.Top)
	assert.Equal(t, int64(3), res.Top.Entry.ID)
	for _, s := range res.Scored[1:] {
		assert.Less(t, s.Score, res.Top.Score)
	}
}

func TestSearch_Weights(t *testing.T) {
	tests := []struct {
		name  string
		entry catalog.Entry
		want  int
	}{
		{"exact title", catalog.Entry{Title: "Rain"}, 100},
		{"title prefix", catalog.Entry{Title: "Rainfall"}, 80},
		{"title substring", catalog.Entry{Title: "Purple Rain"}, 60},
		{"exact artist", catalog.Entry{Artist: "Rain"}, 70},
		{"artist substring", catalog.Entry{Artist: "Rain Tree Crow"}, 40},
		{"album substring", catalog.Entry{Album: "Songs of Rain"}, 30},
		{"genre substring", catalog.Entry{Genre: "rainwave"}, 20},
		{"stacked", catalog.Entry{Title: "Rain", Artist: "Rain", Album: "Rain", Genre: "Rain"}, 220},
		{"punctuation ignored", catalog.Entry{Title: "R.A.I.N."}, 100},
		{"no match", catalog.Entry{Title: "Sun"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := queryScore(&tt.entry, Normalize("rain")); got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSearch_StableTies(t *testing.T) {
	entries := []catalog.Entry{
		{ID: 1, Title: "Blue Moon"},
		{ID: 2, Title: "Moon"},
		{ID: 3, Title: "Half Moon"},
		{ID: 4, Title: "Sailor Moon"},
	}
	first := Search(entries, "moon")
	second := Search(entries, "moon")

	ids := func(r Results) []int64 {
		var out []int64
		for _, s := range r.Scored {
			out = append(out, s.Entry.ID)
		}
		return out
	}
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(first))
	assert.Equal(t, ids(first), ids(second))
}

func TestSearch_Groups(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var entries []catalog.Entry
	entries = append(entries, catalog.Entry{ID: 100, Title: "Night", Artist: "Nova", Genre: "Synth", AddedAt: now})
	for i := range 8 {
		entries = append(entries, catalog.Entry{
			ID:      int64(i + 1),
			Title:   "Night Drive",
			Artist:  []string{"Nova", "Other"}[i%2],
			Genre:   []string{"Synth", "Rock"}[i%2],
			AddedAt: now.Add(time.Duration(i) * time.Hour),
		})
	}
	entries = append(entries, catalog.Entry{ID: 200, Title: "Day", Artist: "Nova"})

	res := Search(entries, "night")

	require.NotNil(t, res.Top)
	assert.Equal(t, int64(100), res.Top.Entry.ID)
	assert.Len(t, res.Similar, 5)
	assert.Equal(t, int64(1), res.Similar[0].Entry.ID)
	assert.Len(t, res.Scored, 9)

	for _, s := range res.SameArtist {
		assert.Equal(t, "Nova", s.Entry.Artist)
		assert.NotEqual(t, int64(100), s.Entry.ID)
	}
	assert.Len(t, res.SameArtist, 4, "only matches, not the whole catalog")
	assert.Len(t, res.SameGenre, 4)

	require.NotEmpty(t, res.Recent)
	assert.Equal(t, int64(8), res.Recent[0].ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	res := Search([]catalog.Entry{{Title: "x"}}, "  ?! ")
	assert.True(t, res.Empty())
	assert.Empty(t, res.Scored)
	assert.Empty(t, res.Recent)
}

func TestSearch_NoMatchFallsBackToRecent(t *testing.T) {
	now := time.Now()
	entries := []catalog.Entry{
		{ID: 1, Title: "A", AddedAt: now.Add(-time.Hour)},
		{ID: 2, Title: "B", AddedAt: now},
	}
	res := Search(entries, "zzz")

	assert.True(t, res.Empty())
	require.Len(t, res.Recent, 2)
	assert.Equal(t, int64(2), res.Recent[0].ID)
}

func TestRecommend(t *testing.T) {
	ref := catalog.Entry{ID: 1, Album: "Blue", Artist: "Miles", Genre: "Jazz", Year: 1959}
	entries := []catalog.Entry{
		ref,
		{ID: 2, Album: "Other", Artist: "Miles", Genre: "Jazz", Year: 1970},
		{ID: 3, Album: "Blue", Artist: "Miles", Genre: "Jazz", Year: 1959},
		{ID: 4, Genre: "Rock", Year: 1961},
		{ID: 5, Genre: "jazz", Year: 1962},
		{ID: 6, Genre: "Pop"},
		{ID: 7, Artist: "miles"},
	}

	got := Recommend(entries, ref, 0)
	var ids []int64
	var scores []int
	for _, s := range got {
		ids = append(ids, s.Entry.ID)
		scores = append(scores, s.Score)
	}
	assert.Equal(t, []int64{3, 2, 7, 5, 4}, ids)
	assert.Equal(t, []int{280, 140, 80, 60, 40}, scores)

	assert.Len(t, Recommend(entries, ref, 2), 2)
}

func TestRecommend_EmptyFieldsDoNotMatch(t *testing.T) {
	ref := catalog.Entry{ID: 1}
	got := Recommend([]catalog.Entry{{ID: 2}, {ID: 3}}, ref, 0)
	assert.Empty(t, got)
}
