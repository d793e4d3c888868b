package rules

import (
	"encoding/json"
	"errors"
	"fmt"
)

// wire is the nested JSON form of a node. A node with Logic set is a group.
type wire struct {
	Logic    Logic    `json:"logic,omitempty"`
	Rules    []wire   `json:"rules,omitempty"`
	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    any      `json:"value,omitempty"`
}

// MarshalJSON encodes the tree as nested groups.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toWire(t.Root()))
}

func (t *Tree) toWire(id NodeID) wire {
	n := &t.nodes[id]
	if !n.group {
		return wire{Field: n.rule.Field, Operator: n.rule.Operator, Value: n.rule.Value}
	}
	w := wire{Logic: n.logic, Rules: []wire{}}
	for _, c := range n.children {
		w.Rules = append(w.Rules, t.toWire(c))
	}
	return w
}

// UnmarshalJSON decodes nested groups. The top level must be a group.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode rule tree: %w", err)
	}
	if w.Logic == "" {
		return errors.New("decode rule tree: root is not a group")
	}
	*t = *NewTree(w.Logic)
	return t.fromWire(t.Root(), w.Rules)
}

func (t *Tree) fromWire(parent NodeID, children []wire) error {
	for _, c := range children {
		if c.Logic != "" {
			id, err := t.AddGroup(parent, c.Logic)
			if err != nil {
				return err
			}
			if err := t.fromWire(id, c.Rules); err != nil {
				return err
			}
			continue
		}
		if _, err := t.AddRule(parent, Rule{Field: c.Field, Operator: c.Operator, Value: c.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a JSON rule tree.
func Parse(data []byte) (*Tree, error) {
	t := &Tree{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}
