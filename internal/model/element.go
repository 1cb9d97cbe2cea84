// Package model holds the client-facing representation of remote UI
// element trees, independent of the wire protocol that produced them.
package model

import (
	"github.com/mj1618/uibridge/internal/protocol"
)

// Geometry is an element's absolute position and size on screen.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementNode is one node of a reconstructed element tree. Children is
// populated only up to the depth requested by the caller; a node at the
// depth boundary carries an empty (never nil) Children slice so the JSON
// output always has a children array.
type ElementNode struct {
	Handle         protocol.Handle          `json:"handle"`
	TypeInfo       []protocol.TypeNameAndID `json:"type_info"`
	AccessibleRole string                   `json:"accessible_role"`
	Properties     map[string]any           `json:"properties"`
	Geometry       *Geometry                `json:"geometry,omitempty"`
	Children       []ElementNode            `json:"children"`
}

// NodeFromProperties builds an ElementNode (with empty children) from one
// element_properties response. String-valued accessible properties are
// included only when non-empty; boolean and numeric ones always, matching
// what the peer reports.
func NodeFromProperties(h protocol.Handle, p protocol.ElementProperties) ElementNode {
	props := map[string]any{
		"checked":          p.Checked,
		"checkable":        p.Checkable,
		"enabled":          p.Enabled,
		"read_only":        p.ReadOnly,
		"value_minimum":    p.ValueMinimum,
		"value_maximum":    p.ValueMaximum,
		"value_step":       p.ValueStep,
		"computed_opacity": p.ComputedOpacity,
	}
	for name, v := range map[string]string{
		"label":       p.Label,
		"value":       p.Value,
		"description": p.Description,
		"placeholder": p.Placeholder,
	} {
		if v != "" {
			props[name] = v
		}
	}

	node := ElementNode{
		Handle:         h,
		TypeInfo:       p.TypeInfo,
		AccessibleRole: p.AccessibleRole,
		Properties:     props,
		Children:       []ElementNode{},
	}
	if p.Size != nil && p.Position != nil {
		node.Geometry = &Geometry{
			X:      p.Position.X,
			Y:      p.Position.Y,
			Width:  p.Size.Width,
			Height: p.Size.Height,
		}
	}
	return node
}

// Depth returns the depth of the tree rooted at n: 0 for a leaf.
func (n *ElementNode) Depth() int {
	deepest := 0
	for i := range n.Children {
		if d := n.Children[i].Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Count returns the number of nodes in the tree rooted at n, including n.
func (n *ElementNode) Count() int {
	total := 1
	for i := range n.Children {
		total += n.Children[i].Count()
	}
	return total
}
