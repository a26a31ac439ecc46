package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Validate checks the structural invariants of a linked tree:
// unique ids, a single parentless root at depth 0, ParentID matching the owning node,
// depth equal to parent depth plus one, and label equal to id.
// All problems are collected and returned wrapped in domain.ErrInvariantViolation.
func Validate(root *domain.Node) error {
	if root == nil {
		return nil
	}

	var problems []string
	if !root.IsRoot() {
		problems = append(problems, fmt.Sprintf("root '%s' has parent '%s'", root.ID, root.ParentID))
	}
	if root.Depth != 0 {
		problems = append(problems, fmt.Sprintf("root '%s' has depth %d", root.ID, root.Depth))
	}

	seen := make(map[string]bool)
	var visit func(n *domain.Node)
	visit = func(n *domain.Node) {
		if seen[n.ID] {
			problems = append(problems, fmt.Sprintf("id '%s' is reachable more than once", n.ID))
			return
		}
		seen[n.ID] = true

		if n.Label != n.ID {
			problems = append(problems, fmt.Sprintf("node '%s' has label '%s'", n.ID, n.Label))
		}
		for _, c := range n.Children {
			if c.ParentID != n.ID {
				problems = append(problems, fmt.Sprintf("node '%s' is owned by '%s' but points at '%s'", c.ID, n.ID, c.ParentID))
			}
			if c.Depth != n.Depth+1 {
				problems = append(problems, fmt.Sprintf("node '%s' has depth %d under depth %d", c.ID, c.Depth, n.Depth))
			}
			visit(c)
		}
	}
	visit(root)

	if len(problems) > 0 {
		return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvariantViolation, len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
