package runtime

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// build creates a linked tree from "parent>child" edges rooted at "1".
func build(edges ...string) *domain.Node {
	root := domain.NewRoot(domain.RootID)
	for _, e := range edges {
		parts := strings.Split(e, ">")
		parent := FindByID(root, parts[0])
		root = AddChild(root, parent.ID, domain.NewChild(parent, parts[1]))
	}
	return root
}

// shape renders ids and nesting, e.g. "1(2(3),4)".
func shape(n *domain.Node) string {
	if n == nil {
		return ""
	}
	if len(n.Children) == 0 {
		return n.ID
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = shape(c)
	}
	return n.ID + "(" + strings.Join(parts, ",") + ")"
}
