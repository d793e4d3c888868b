package smart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/cmd/common/commontest"
	"github.com/llehouerou/tides/internal/playlists"
	"github.com/llehouerou/tides/internal/rules"
	"github.com/llehouerou/tides/internal/testutil"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		input   string
		want    rules.Rule
		wantErr bool
	}{
		{"genre is Rock", rules.Rule{Field: "genre", Operator: rules.Is, Value: "Rock"}, false},
		{"artist contains Earth Wind", rules.Rule{Field: "artist", Operator: rules.Contains, Value: "Earth Wind"}, false},
		{"Year GREATER 1999", rules.Rule{Field: "year", Operator: rules.Greater, Value: 1999.0}, false},
		{"favorite is true", rules.Rule{Field: "favorite", Operator: rules.Is, Value: true}, false},
		{"title is-not", rules.Rule{Field: "title", Operator: rules.IsNot, Value: ""}, false},
		{"genre", rules.Rule{}, true},
		{"genre like Rock", rules.Rule{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRule(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuildTree_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	doc := `{"logic":"or","rules":[{"field":"genre","operator":"is","value":"Jazz"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tree, err := buildTree("@"+path, nil, false)
	require.NoError(t, err)
	logic, err := tree.Logic(tree.Root())
	require.NoError(t, err)
	assert.Equal(t, rules.Or, logic)

	_, err = buildTree("{not json", nil, false)
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	env := commontest.Env(t)
	commontest.Seed(t, env,
		commontest.Track{Title: "One", Artist: "A", Genre: "Rock", Year: 1995},
		commontest.Track{Title: "Two", Artist: "B", Genre: "Rock", Year: 2005},
		commontest.Track{Title: "Three", Artist: "C", Genre: "Jazz", Year: 2005},
	)

	var out bytes.Buffer
	require.NoError(t, RunCreate(env, &CreateParams{Name: "Modern Rock", Rule: []string{"genre is Rock", "year greater 2000"}}, &out))
	assert.Contains(t, out.String(), `Created "Modern Rock"`)

	out.Reset()
	require.NoError(t, RunTracks(env, &TracksParams{Playlist: "modern rock", Queue: true}, &out))
	assert.True(t, testutil.ContainsLine(out.String(), "B - Two"))
	assert.False(t, testutil.ContainsLine(out.String(), "A - One"))
	assert.Contains(t, out.String(), "1 track")
	assert.Equal(t, 1, env.Queue.Len())

	out.Reset()
	require.NoError(t, RunSetRules(env, &RulesParams{Playlist: "Modern Rock", Rule: []string{"year is 2005"}}, &out))
	out.Reset()
	require.NoError(t, RunTracks(env, &TracksParams{Playlist: "Modern Rock"}, &out))
	assert.Contains(t, out.String(), "2 tracks")

	out.Reset()
	require.NoError(t, RunShow(env, &RefParams{Playlist: "Modern Rock"}, &out))
	assert.True(t, testutil.ContainsLine(out.String(), "AND"))
	assert.True(t, testutil.ContainsLine(out.String(), "year is 2005"))

	out.Reset()
	require.NoError(t, RunRename(env, &RenameParams{Playlist: "Modern Rock", Name: "Class of 2005"}, &out))

	out.Reset()
	require.NoError(t, RunList(env, &out))
	assert.Contains(t, out.String(), "Class of 2005")
	assert.Contains(t, out.String(), "2 tracks")

	out.Reset()
	require.NoError(t, RunDelete(env, &RefParams{Playlist: "class of 2005"}, &out))
	err := RunShow(env, &RefParams{Playlist: "Class of 2005"}, &out)
	assert.ErrorIs(t, err, playlists.ErrNotFound)

	out.Reset()
	require.NoError(t, RunList(env, &out))
	assert.Equal(t, "No smart playlists.\n", out.String())
}

func TestRunCreate_EmptyName(t *testing.T) {
	env := commontest.Env(t)
	err := RunCreate(env, &CreateParams{Name: "  "}, &bytes.Buffer{})
	assert.ErrorIs(t, err, playlists.ErrEmptyName)
}
