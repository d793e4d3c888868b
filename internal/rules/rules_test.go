package rules

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/catalog"
)

func sample() []catalog.Entry {
	return []catalog.Entry{
		{ID: 1, Title: "Aurora", Artist: "Norah", Genre: "Lofi", Year: 2019, Duration: 200 * time.Second, PlayCount: 3},
		{ID: 2, Title: "Dawn", Artist: "Boards", Genre: "Ambient", Year: 1998, Favorite: true},
		{ID: 3, Title: "Lost Signal", Artist: "Norah", Genre: "Lo-Fi House", Year: 2021, PlayCount: 12},
	}
}

func single(r Rule) *Tree {
	t := NewTree(And)
	if _, err := t.AddRule(t.Root(), r); err != nil {
		panic(err)
	}
	return t
}

func TestEvaluate_Operators(t *testing.T) {
	e := sample()[0]
	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{"contains lower", Rule{"genre", Contains, "lo"}, true},
		{"contains upper", Rule{"genre", Contains, "LO"}, true},
		{"contains miss", Rule{"genre", Contains, "jazz"}, false},
		{"not contains", Rule{"genre", NotContains, "jazz"}, true},
		{"is exact", Rule{"title", Is, "Aurora"}, true},
		{"is case sensitive", Rule{"title", Is, "aurora"}, false},
		{"is number", Rule{"year", Is, 2019}, true},
		{"is type preserving", Rule{"year", Is, "2019"}, false},
		{"is not", Rule{"artist", IsNot, "Boards"}, true},
		{"is bool", Rule{"favorite", Is, false}, true},
		{"starts", Rule{"title", Starts, "AUR"}, true},
		{"ends", Rule{"title", Ends, "ORA"}, true},
		{"greater", Rule{"year", Greater, 2000}, true},
		{"greater string coerced", Rule{"playcount", Greater, "2"}, true},
		{"less", Rule{"duration", Less, 100}, false},
		{"greater not a number", Rule{"year", Greater, "soon"}, false},
		{"greater text field", Rule{"title", Greater, 1}, false},
		{"contains number as text", Rule{"year", Contains, "201"}, true},
		{"unknown operator", Rule{"title", Operator("like"), "Aurora"}, false},
		{"unknown field", Rule{"mood", Is, "happy"}, false},
		{"unknown field negated", Rule{"mood", IsNot, "happy"}, false},
		{"non comparable value", Rule{"title", Is, []any{"Aurora"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(&e, single(tt.rule)); got != tt.want {
				t.Errorf("Evaluate(%+v) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestFilter_EmptyGroupMatchesNothing(t *testing.T) {
	assert.Empty(t, Filter(sample(), NewTree(And)))
	assert.Empty(t, Filter(sample(), NewTree(Or)))

	tr := NewTree(Or)
	_, err := tr.AddGroup(tr.Root(), And)
	require.NoError(t, err)
	assert.Empty(t, Filter(sample(), tr))
}

func TestFilter_RootlessTreeMatchesNothing(t *testing.T) {
	e := sample()[0]
	assert.False(t, Evaluate(&e, &Tree{}))
	assert.False(t, Evaluate(&e, nil))
	assert.Empty(t, Filter(sample(), &Tree{}))
}

func TestFilter_NestedGroups(t *testing.T) {
	// artist is Norah AND (year > 2020 OR favorite)
	tr := NewTree(And)
	_, err := tr.AddRule(tr.Root(), Rule{"artist", Is, "Norah"})
	require.NoError(t, err)
	g, err := tr.AddGroup(tr.Root(), Or)
	require.NoError(t, err)
	_, err = tr.AddRule(g, Rule{"year", Greater, 2020})
	require.NoError(t, err)
	_, err = tr.AddRule(g, Rule{"favorite", Is, true})
	require.NoError(t, err)

	got := Filter(sample(), tr)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestFilter_KeepsInputOrder(t *testing.T) {
	tr := single(Rule{"genre", Contains, "lo"})
	got := Filter(sample(), tr)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestTree_Mutations(t *testing.T) {
	tr := NewTree(And)
	r1, err := tr.AddRule(tr.Root(), Rule{"genre", Contains, "lo"})
	require.NoError(t, err)
	g, err := tr.AddGroup(tr.Root(), Or)
	require.NoError(t, err)
	r2, err := tr.AddRule(g, Rule{"year", Greater, 2020})
	require.NoError(t, err)

	_, err = tr.AddRule(r1, Rule{})
	assert.ErrorIs(t, err, ErrNotGroup)
	assert.ErrorIs(t, tr.UpdateRule(g, Rule{}), ErrNotRule)
	assert.ErrorIs(t, tr.SetLogic(r1, Or), ErrNotGroup)
	assert.ErrorIs(t, tr.Remove(tr.Root()), ErrRootRemoval)

	require.NoError(t, tr.UpdateRule(r2, Rule{"year", Less, 2000}))
	got, err := tr.Rule(r2)
	require.NoError(t, err)
	assert.Equal(t, float64(2000), got.Value)

	require.NoError(t, tr.Remove(g))
	assert.ErrorIs(t, tr.Remove(g), ErrNotFound)
	_, err = tr.Rule(r2)
	assert.ErrorIs(t, err, ErrNotFound, "children of a removed group are gone")

	children, err := tr.Children(tr.Root())
	require.NoError(t, err)
	assert.Equal(t, []NodeID{r1}, children)

	r3, err := tr.AddRule(tr.Root(), Rule{"title", Is, "x"})
	require.NoError(t, err)
	assert.NotEqual(t, r2, r3, "ids are never reused")
}

func TestTree_SetLogic(t *testing.T) {
	tr := NewTree(And)
	_, _ = tr.AddRule(tr.Root(), Rule{"artist", Is, "Boards"})
	_, _ = tr.AddRule(tr.Root(), Rule{"artist", Is, "Norah"})
	assert.Empty(t, Filter(sample(), tr))

	require.NoError(t, tr.SetLogic(tr.Root(), Or))
	assert.Len(t, Filter(sample(), tr), 3)
}

func TestTree_JSON(t *testing.T) {
	raw := `{"logic":"and","rules":[
		{"field":"genre","operator":"contains","value":"lo"},
		{"logic":"or","rules":[
			{"field":"year","operator":"greater","value":2020},
			{"field":"favorite","operator":"is","value":true}
		]}
	]}`
	tr, err := Parse([]byte(raw))
	require.NoError(t, err)

	got := Filter(sample(), tr)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Filter(sample(), tr), Filter(sample(), again))

	assert.JSONEq(t, raw, string(data))
}

func TestTree_JSONEmptyRoot(t *testing.T) {
	data, err := json.Marshal(NewTree(Or))
	require.NoError(t, err)
	assert.JSONEq(t, `{"logic":"or","rules":[]}`, string(data))
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{`not json`, `{"field":"title","operator":"is","value":"x"}`} {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("Parse(%q) should fail", raw)
		}
	}
}
