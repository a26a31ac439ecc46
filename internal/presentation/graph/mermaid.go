package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	ActiveNode string
	// MaxDepth marks nodes that cannot take more children. Zero disables the marker.
	MaxDepth int
}

// GenerateMermaid produces a Mermaid flowchart (graph TD) of the tree rooted at root.
// It applies semantic styling:
// - Root: ((Circle))
// - Node at the depth limit: [/Parallelogram/]
// - Default: [Rectangle]
// Edges follow Children, so link-free snapshots render the same as live trees.
func GenerateMermaid(root *domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var visit func(n *domain.Node, isRoot bool)
	visit = func(n *domain.Node, isRoot bool) {
		safeID := sanitizeMermaidID(n.ID)

		opener, closer := "[", "]"
		switch {
		case isRoot:
			opener, closer = "((", "))"
		case overlay != nil && overlay.MaxDepth > 0 && n.Depth >= overlay.MaxDepth:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(n.Label), closer))

		for _, c := range n.Children {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(c.ID)))
		}
		for _, c := range n.Children {
			visit(c, false)
		}
	}
	if root != nil {
		visit(root, true)
	}

	if overlay != nil && overlay.ActiveNode != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.ActiveNode)))
	}

	return sb.String()
}

// sanitizeMermaidID prefixes ids so they never start with a digit.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return "n" + s
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
