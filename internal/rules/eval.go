package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/llehouerou/tides/internal/catalog"
)

// Filter returns the entries matching the tree, in input order.
func Filter(entries []catalog.Entry, t *Tree) []catalog.Entry {
	var out []catalog.Entry
	for i := range entries {
		if Evaluate(&entries[i], t) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Evaluate reports whether e matches the tree. An empty group matches nothing,
// and so does a tree without a root.
func Evaluate(e *catalog.Entry, t *Tree) bool {
	if t == nil || len(t.nodes) == 0 {
		return false
	}
	return t.eval(e, t.Root())
}

func (t *Tree) eval(e *catalog.Entry, id NodeID) bool {
	n := &t.nodes[id]
	if !n.group {
		return evalRule(e, n.rule)
	}
	if len(n.children) == 0 {
		return false
	}
	switch n.logic {
	case And:
		for _, c := range n.children {
			if !t.eval(e, c) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range n.children {
			if t.eval(e, c) {
				return true
			}
		}
		return false
	}
	return false
}

func evalRule(e *catalog.Entry, r Rule) bool {
	v, ok := fieldValue(e, r.Field)
	if !ok {
		return false
	}
	switch r.Operator {
	case Is:
		return equal(v, r.Value)
	case IsNot:
		return !equal(v, r.Value)
	case Contains:
		return strings.Contains(lowerText(v), lowerText(r.Value))
	case NotContains:
		return !strings.Contains(lowerText(v), lowerText(r.Value))
	case Starts:
		return strings.HasPrefix(lowerText(v), lowerText(r.Value))
	case Ends:
		return strings.HasSuffix(lowerText(v), lowerText(r.Value))
	case Greater, Less:
		a, aok := number(v)
		b, bok := number(r.Value)
		if !aok || !bok {
			return false
		}
		if r.Operator == Greater {
			return a > b
		}
		return a < b
	}
	return false
}

// fieldValue resolves a field by name. Strings stay strings, numbers are
// float64 and flags are bool.
func fieldValue(e *catalog.Entry, field string) (any, bool) {
	switch strings.ToLower(field) {
	case "title":
		return e.Title, true
	case "artist":
		return e.Artist, true
	case "album":
		return e.Album, true
	case "genre":
		return e.Genre, true
	case "year":
		return float64(e.Year), true
	case "duration":
		return e.Duration.Seconds(), true
	case "playcount", "play_count", "plays":
		return float64(e.PlayCount), true
	case "favorite":
		return e.Favorite, true
	case "path":
		return e.Path, true
	}
	return nil, false
}

// equal is type-preserving: "1" does not equal 1.
func equal(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func lowerText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.ToLower(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	}
	return ""
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
