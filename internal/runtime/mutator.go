package runtime

import "github.com/aretw0/arbor/pkg/domain"

// The functions in this file never modify the nodes they receive. A mutation copies
// the nodes on the path from the root to the change and shares every other subtree
// with the input version.

// AddChild returns a tree in which child is appended to the children of parentID.
// If parentID is not in the tree, root is returned unchanged.
func AddChild(root *domain.Node, parentID string, child *domain.Node) *domain.Node {
	path := findPath(root, parentID)
	if path == nil {
		return root
	}

	target := path[len(path)-1]
	updated := shallowCopy(target)
	updated.Children = make([]*domain.Node, len(target.Children), len(target.Children)+1)
	copy(updated.Children, target.Children)
	updated.Children = append(updated.Children, child)

	return rebuildPath(path, updated)
}

// RemoveSubtree returns a tree without nodeID and its descendants.
// The root cannot be removed this way, and unknown ids are rejected; in both cases
// the original tree is returned with false.
func RemoveSubtree(root *domain.Node, nodeID string) (*domain.Node, bool) {
	if root == nil || root.ID == nodeID {
		return root, false
	}
	path := findPath(root, nodeID)
	if path == nil {
		return root, false
	}

	parent := path[len(path)-2]
	updated := shallowCopy(parent)
	updated.Children = make([]*domain.Node, 0, len(parent.Children)-1)
	for _, c := range parent.Children {
		if c.ID != nodeID {
			updated.Children = append(updated.Children, c)
		}
	}

	return rebuildPath(path[:len(path)-1], updated), true
}

// FindByID searches depth-first, parent before children, and returns the first match.
func FindByID(root *domain.Node, id string) *domain.Node {
	var found *domain.Node
	root.Walk(func(n *domain.Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Flatten lists the tree in depth-first, parent-before-children order.
func Flatten(root *domain.Node) []*domain.Node {
	var nodes []*domain.Node
	root.Walk(func(n *domain.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// PathToRoot returns the nodes from id up to the root, id first.
// It resolves each hop through ParentID, so the tree must be linked.
func PathToRoot(root *domain.Node, id string) []*domain.Node {
	var path []*domain.Node
	for n := FindByID(root, id); n != nil; {
		path = append(path, n)
		if n.IsRoot() {
			break
		}
		n = FindByID(root, n.ParentID)
	}
	return path
}

// CountSubtree returns the number of nodes in the subtree rooted at n, n included.
func CountSubtree(n *domain.Node) int {
	count := 0
	n.Walk(func(*domain.Node) bool {
		count++
		return true
	})
	return count
}

// Clone deep-copies the tree without parent links, as stored in history.
func Clone(root *domain.Node) *domain.Node {
	if root == nil {
		return nil
	}
	c := &domain.Node{
		ID:    root.ID,
		Label: root.Label,
		Depth: root.Depth,
	}
	if len(root.Children) > 0 {
		c.Children = make([]*domain.Node, len(root.Children))
		for i, child := range root.Children {
			c.Children[i] = Clone(child)
		}
	}
	return c
}

// Relink assigns ParentID top-down. It mutates root and must only be applied to a
// tree the caller exclusively owns, such as a fresh Clone.
func Relink(root *domain.Node) *domain.Node {
	if root == nil {
		return nil
	}
	root.ParentID = ""
	relink(root)
	return root
}

func relink(n *domain.Node) {
	for _, c := range n.Children {
		c.ParentID = n.ID
		relink(c)
	}
}

// findPath returns the chain of nodes from root to id (both included), or nil.
// Only child edges are followed, so link-free trees are searched correctly.
func findPath(root *domain.Node, id string) []*domain.Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return []*domain.Node{root}
	}
	for _, c := range root.Children {
		if sub := findPath(c, id); sub != nil {
			return append([]*domain.Node{root}, sub...)
		}
	}
	return nil
}

// rebuildPath replaces path[len(path)-1] with updated and copies every ancestor so
// that the returned root reaches updated.
func rebuildPath(path []*domain.Node, updated *domain.Node) *domain.Node {
	current := updated
	for i := len(path) - 2; i >= 0; i-- {
		original := path[i]
		replaced := path[i+1]

		ancestor := shallowCopy(original)
		ancestor.Children = make([]*domain.Node, len(original.Children))
		for j, c := range original.Children {
			if c == replaced {
				ancestor.Children[j] = current
			} else {
				ancestor.Children[j] = c
			}
		}
		current = ancestor
	}
	return current
}

func shallowCopy(n *domain.Node) *domain.Node {
	c := *n
	return &c
}
