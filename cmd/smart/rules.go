package smart

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/llehouerou/tides/internal/rules"
)

// buildTree assembles a rule tree from inline JSON, a JSON file, or
// "field operator value" rules joined by one logic.
func buildTree(jsonText string, ruleTexts []string, matchAny bool) (*rules.Tree, error) {
	if jsonText != "" {
		data := []byte(jsonText)
		if path, ok := strings.CutPrefix(jsonText, "@"); ok {
			b, err := os.ReadFile(path) //nolint:gosec // user-supplied rules file
			if err != nil {
				return nil, err
			}
			data = b
		}
		return rules.Parse(data)
	}

	logic := rules.And
	if matchAny {
		logic = rules.Or
	}
	t := rules.NewTree(logic)
	for _, text := range ruleTexts {
		r, err := parseRule(text)
		if err != nil {
			return nil, err
		}
		if _, err := t.AddRule(t.Root(), r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseRule parses "field operator value". The value keeps inner spaces;
// numbers and true/false are typed.
func parseRule(text string) (rules.Rule, error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return rules.Rule{}, fmt.Errorf("rule %q: want \"field operator value\"", text)
	}
	field, op := parts[0], rules.Operator(strings.ToLower(parts[1]))
	if !knownOperator(op) {
		return rules.Rule{}, fmt.Errorf("rule %q: unknown operator %q", text, parts[1])
	}
	raw := strings.Join(parts[2:], " ")
	return rules.Rule{Field: strings.ToLower(field), Operator: op, Value: typedValue(raw)}, nil
}

func typedValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func knownOperator(op rules.Operator) bool {
	switch op {
	case rules.Is, rules.IsNot, rules.Contains, rules.NotContains,
		rules.Starts, rules.Ends, rules.Greater, rules.Less:
		return true
	}
	return false
}

// describe renders the tree as an indented outline.
func describe(t *rules.Tree) string {
	var b strings.Builder
	var walk func(id rules.NodeID, depth int)
	walk = func(id rules.NodeID, depth int) {
		indent := strings.Repeat("  ", depth)
		if t.IsGroup(id) {
			logic, _ := t.Logic(id)
			fmt.Fprintf(&b, "%s%s\n", indent, strings.ToUpper(string(logic)))
			children, _ := t.Children(id)
			for _, c := range children {
				walk(c, depth+1)
			}
			return
		}
		r, _ := t.Rule(id)
		fmt.Fprintf(&b, "%s%s %s %v\n", indent, r.Field, r.Operator, r.Value)
	}
	walk(t.Root(), 0)
	return b.String()
}
