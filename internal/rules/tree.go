// Package rules evaluates smart-playlist rule trees against catalog entries.
//
// A tree is an arena of nodes addressed by NodeID. Node lookup and mutation
// never walk the tree.
package rules

import "errors"

var (
	ErrNotFound    = errors.New("rule node not found")
	ErrNotGroup    = errors.New("rule node is not a group")
	ErrNotRule     = errors.New("rule node is not a rule")
	ErrRootRemoval = errors.New("cannot remove the root group")
)

// Logic combines the children of a group.
type Logic string

const (
	And Logic = "and"
	Or  Logic = "or"
)

// Operator compares an entry field with a rule value.
type Operator string

const (
	Is          Operator = "is"
	IsNot       Operator = "is-not"
	Contains    Operator = "contains"
	NotContains Operator = "not-contains"
	Starts      Operator = "starts"
	Ends        Operator = "ends"
	Greater     Operator = "greater"
	Less        Operator = "less"
)

// Rule is a leaf condition.
type Rule struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// NodeID identifies a node for the lifetime of its tree.
type NodeID int

type node struct {
	alive    bool
	group    bool
	logic    Logic
	rule     Rule
	parent   NodeID
	children []NodeID
}

// Tree is a rule tree with a root group.
type Tree struct {
	nodes []node
}

// NewTree creates a tree whose root group combines its children with logic.
func NewTree(logic Logic) *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, node{alive: true, group: true, logic: logic, parent: -1})
	return t
}

// Root returns the root group.
func (t *Tree) Root() NodeID { return 0 }

// AddRule appends a rule to the group parent.
func (t *Tree) AddRule(parent NodeID, r Rule) (NodeID, error) {
	return t.add(parent, node{alive: true, rule: normalizeRule(r)})
}

// AddGroup appends an empty group to the group parent.
func (t *Tree) AddGroup(parent NodeID, logic Logic) (NodeID, error) {
	return t.add(parent, node{alive: true, group: true, logic: logic})
}

func (t *Tree) add(parent NodeID, n node) (NodeID, error) {
	p, err := t.lookup(parent)
	if err != nil {
		return 0, err
	}
	if !p.group {
		return 0, ErrNotGroup
	}
	id := NodeID(len(t.nodes))
	n.parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id, nil
}

// UpdateRule replaces the condition of rule id.
func (t *Tree) UpdateRule(id NodeID, r Rule) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if n.group {
		return ErrNotRule
	}
	n.rule = normalizeRule(r)
	return nil
}

// SetLogic changes the logic of group id.
func (t *Tree) SetLogic(id NodeID, logic Logic) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if !n.group {
		return ErrNotGroup
	}
	n.logic = logic
	return nil
}

// Remove deletes node id and, for a group, everything below it.
func (t *Tree) Remove(id NodeID) error {
	if id == t.Root() {
		return ErrRootRemoval
	}
	n, err := t.lookup(id)
	if err != nil {
		return err
	}

	parent := &t.nodes[n.parent]
	for i, c := range parent.children {
		if c == id {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			break
		}
	}

	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[cur].children...)
		t.nodes[cur] = node{}
	}
	return nil
}

// IsGroup reports whether id is a live group.
func (t *Tree) IsGroup(id NodeID) bool {
	n, err := t.lookup(id)
	return err == nil && n.group
}

// Logic returns the logic of group id.
func (t *Tree) Logic(id NodeID) (Logic, error) {
	n, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	if !n.group {
		return "", ErrNotGroup
	}
	return n.logic, nil
}

// Rule returns the condition of rule id.
func (t *Tree) Rule(id NodeID) (Rule, error) {
	n, err := t.lookup(id)
	if err != nil {
		return Rule{}, err
	}
	if n.group {
		return Rule{}, ErrNotRule
	}
	return n.rule, nil
}

// Children returns a copy of the children of group id.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if !n.group {
		return nil, ErrNotGroup
	}
	return append([]NodeID(nil), n.children...), nil
}

func (t *Tree) lookup(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(t.nodes) || !t.nodes[id].alive {
		return nil, ErrNotFound
	}
	return &t.nodes[id], nil
}

// normalizeRule stores integer literals as float64 so that equality does not
// depend on how the value was produced.
func normalizeRule(r Rule) Rule {
	r.Value = normalizeValue(r.Value)
	return r
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}
