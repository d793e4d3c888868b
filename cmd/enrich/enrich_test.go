package enrich

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/cmd/common/commontest"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/testutil"
)

type fakeService struct {
	result  *enrich.Result
	err     error
	queries []enrich.Query
}

func (f *fakeService) Lookup(_ context.Context, q enrich.Query) (*enrich.Result, error) {
	f.queries = append(f.queries, q)
	return f.result, f.err
}

func TestRun_AppliesResult(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "aurora", Artist: "someone", Album: "Dawn"})
	e := seeded[0]

	svc := &fakeService{result: &enrich.Result{Title: "Aurora", PlainLyrics: "la la"}}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), env, svc, &Params{Entry: strconv.FormatInt(e.ID, 10)}, &out))

	require.Len(t, svc.queries, 1)
	assert.Equal(t, "aurora", svc.queries[0].Title)
	assert.Equal(t, "someone", svc.queries[0].Artist)

	lines := testutil.Lines(out.String())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "someone - Aurora (Dawn)")
	assert.Equal(t, "Lyrics stored.", lines[1])

	got, err := env.Library.Entry(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", got.Title)
	assert.Equal(t, "la la", got.Lyrics)
}

func TestRun_NothingNew(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Aurora", Artist: "Someone"})

	tests := []struct {
		name   string
		result *enrich.Result
	}{
		{"not found", nil},
		{"same metadata", &enrich.Result{Title: "Aurora", Artist: "Someone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			svc := &fakeService{result: tt.result}
			require.NoError(t, Run(context.Background(), env, svc, &Params{Entry: seeded[0].Path}, &out))
			assert.Equal(t, "Nothing new.\n", out.String())
		})
	}
}

func TestRun_LookupFailureIsReported(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Aurora", Artist: "Someone"})

	svc := &fakeService{err: errors.New("service unavailable")}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), env, svc, &Params{Entry: seeded[0].Path}, &out))
	assert.Equal(t, "Lookup failed: service unavailable\n", out.String())

	got, err := env.Library.Entry(seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0].Title, got.Title)
}

func TestRun_InvalidQuery(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Untitled"})

	svc := &fakeService{}
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), env, svc, &Params{Entry: seeded[0].Path}, &out))
	assert.Contains(t, out.String(), "nothing to look up")
	assert.Empty(t, svc.queries)
}
