package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

// Outline renders the tree as a Markdown nested list, suitable for NewRenderer.
// The active node is emphasized and annotated.
func Outline(root *domain.Node, activeID string) string {
	var sb strings.Builder
	var visit func(n *domain.Node, level int)
	visit = func(n *domain.Node, level int) {
		sb.WriteString(strings.Repeat("  ", level))
		if n.ID == activeID {
			sb.WriteString(fmt.Sprintf("- **%s** _(active, depth %d)_\n", n.Label, n.Depth))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", n.Label))
		}
		for _, c := range n.Children {
			visit(c, level+1)
		}
	}
	if root == nil {
		return "_(empty tree)_\n"
	}
	visit(root, 0)
	return sb.String()
}

// PlainTree renders the tree with box-drawing connectors. The active node is
// highlighted when the terminal supports color.
func PlainTree(root *domain.Node, activeID string) string {
	return plainTree(root, activeID, termenv.ColorProfile())
}

// plainTree styles through p; termenv.Ascii leaves every label untouched.
func plainTree(root *domain.Node, activeID string, p termenv.Profile) string {
	if root == nil {
		return "(empty tree)\n"
	}

	label := func(n *domain.Node) string {
		if n.ID != activeID {
			return n.Label
		}
		if p == termenv.Ascii {
			return n.Label + " *"
		}
		return p.String(n.Label + " *").Foreground(p.Color("#fbc02d")).Bold().String()
	}

	var sb strings.Builder
	sb.WriteString(label(root) + "\n")
	var visit func(children []*domain.Node, prefix string)
	visit = func(children []*domain.Node, prefix string) {
		for i, c := range children {
			connector, next := "├── ", "│   "
			if i == len(children)-1 {
				connector, next = "└── ", "    "
			}
			sb.WriteString(prefix + connector + label(c) + "\n")
			visit(c.Children, prefix+next)
		}
	}
	visit(root.Children, "")
	return sb.String()
}
