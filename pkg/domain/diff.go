package domain

// StateDiff represents the changes between two graph states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is filled in by the transport that broadcasts the diff.
	SessionID string `json:"session_id,omitempty"`

	// ActiveNodeID is set when the selection changed. An empty string means "none".
	ActiveNodeID *string `json:"active_node_id,omitempty"`

	// NextID is set when the allocator moved.
	NextID *int `json:"next_id,omitempty"`

	// Added lists nodes present in the new state only, parents before children.
	Added []NodeDelta `json:"added,omitempty"`

	// Removed lists ids present in the old state only, parents before children.
	Removed []string `json:"removed,omitempty"`
}

// NodeDelta is the flat form of an added node.
type NodeDelta struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	ParentID string `json:"parent_id,omitempty"`
	Depth    int    `json:"depth"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *GraphState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{}

	if oldState == nil || oldState.ActiveNodeID != newState.ActiveNodeID {
		active := newState.ActiveNodeID
		diff.ActiveNodeID = &active
	}
	if oldState == nil || oldState.NextID != newState.NextID {
		next := newState.NextID
		diff.NextID = &next
	}

	var oldRoot *Node
	if oldState != nil {
		oldRoot = oldState.Root
	}
	diff.Added, diff.Removed = diffNodes(oldRoot, newState.Root)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffNodes compares by id and lineage. A node whose id survives but whose parent
// changed (possible across a reset) counts as removed and re-added.
// Parents are taken from the traversal, so link-free snapshots compare correctly.
func diffNodes(oldRoot, newRoot *Node) ([]NodeDelta, []string) {
	oldIndex := make(map[string]string)
	walkLineage(oldRoot, "", func(n *Node, parentID string) {
		oldIndex[n.ID] = parentID
	})
	newIndex := make(map[string]string)
	walkLineage(newRoot, "", func(n *Node, parentID string) {
		newIndex[n.ID] = parentID
	})

	var added []NodeDelta
	walkLineage(newRoot, "", func(n *Node, parentID string) {
		if parent, ok := oldIndex[n.ID]; !ok || parent != parentID {
			added = append(added, NodeDelta{
				ID:       n.ID,
				Label:    n.Label,
				ParentID: parentID,
				Depth:    n.Depth,
			})
		}
	})

	var removed []string
	walkLineage(oldRoot, "", func(n *Node, parentID string) {
		if parent, ok := newIndex[n.ID]; !ok || parent != parentID {
			removed = append(removed, n.ID)
		}
	})

	return added, removed
}

func walkLineage(n *Node, parentID string, fn func(n *Node, parentID string)) {
	if n == nil {
		return
	}
	fn(n, parentID)
	for _, c := range n.Children {
		walkLineage(c, n.ID, fn)
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.ActiveNodeID == nil &&
		d.NextID == nil &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0
}
