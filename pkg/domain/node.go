package domain

import "strconv"

// Node represents a labeled point in the tree.
// A Node reachable from a published tree version must be treated as immutable:
// mutations produce new versions that share untouched subtrees.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`

	// Depth is 0 for the root and parent.Depth+1 otherwise.
	// It is assigned once at construction; nodes are never re-parented.
	Depth int `json:"depth" yaml:"depth"`

	// ParentID is a non-owning back-reference resolved by id lookup.
	// Empty for the root.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// Children are kept in creation order.
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewRoot creates a parentless node at depth 0.
func NewRoot(label string) *Node {
	return &Node{ID: label, Label: label}
}

// NewChild creates a node one level below parent. It does not attach it.
func NewChild(parent *Node, label string) *Node {
	return &Node{
		ID:       label,
		Label:    label,
		Depth:    parent.Depth + 1,
		ParentID: parent.ID,
	}
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// FormatID renders an allocator value as a node id.
func FormatID(v int) string {
	return strconv.Itoa(v)
}

// Walk visits the subtree rooted at n in depth-first, parent-before-children order.
// Returning false from fn stops the traversal. Walk reports whether it ran to completion.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
