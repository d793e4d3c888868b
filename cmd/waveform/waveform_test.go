package waveform

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/cmd/common/commontest"
	"github.com/llehouerou/tides/internal/testutil"
)

func TestGraph(t *testing.T) {
	tests := []struct {
		name  string
		peaks []float64
		want  string
	}{
		{"empty", nil, ""},
		{"silence", []float64{0, 0}, "  "},
		{"full", []float64{1}, "█"},
		{"ramp", []float64{0, 0.5, 1}, " ▄█"},
		{"clamped", []float64{-1, 3}, " █"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Graph(tt.peaks))
		})
	}
}

func TestRun_Entry(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Tone", Artist: "Gen"})

	var out bytes.Buffer
	params := &Params{Resource: strconv.FormatInt(seeded[0].ID, 10), Bars: 12}
	require.NoError(t, Run(context.Background(), env, params, &out))

	lines := testutil.Lines(out.String())
	require.Len(t, lines, 1)
	assert.Equal(t, 12, utf8.RuneCountInString(lines[0]))
}

func TestRun_RawPath(t *testing.T) {
	env := commontest.Env(t)
	path := filepath.Join(t.TempDir(), "loose.wav")
	testutil.WriteTone(t, path, 200*time.Millisecond)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), env, &Params{Resource: path, Bars: 4, Raw: true}, &out))

	lines := testutil.Lines(out.String())
	require.Len(t, lines, 4)
	assert.Regexp(t, `^0 \d\.\d{4}$`, lines[0])
}

func TestRun_ConfiguredBars(t *testing.T) {
	env := commontest.Env(t)
	seeded := commontest.Seed(t, env, commontest.Track{Title: "Tone", Artist: "Gen"})

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), env, &Params{Resource: seeded[0].Path, Raw: true}, &out))
	assert.Len(t, testutil.Lines(out.String()), env.Config.GetWaveformConfig().Bars)
}
