package domain

// GraphState is a snapshot of a session at a point in time.
// Root is a deep copy taken without parent links; restoring a GraphState
// requires rebuilding ParentID top-down before the tree is used.
type GraphState struct {
	// Root of the tree, or nil while a reset is in flight.
	Root *Node `json:"root,omitempty"`

	// ActiveNodeID is the id of the selected node, or empty when none is selected.
	ActiveNodeID string `json:"active_node_id,omitempty"`

	// NextID is the allocator value the next created node will receive.
	NextID int `json:"next_id"`
}

// HistoryStatus describes the position of the undo/redo cursor.
type HistoryStatus struct {
	Cursor   int  `json:"cursor"`
	Len      int  `json:"len"`
	Capacity int  `json:"capacity"`
	CanUndo  bool `json:"can_undo"`
	CanRedo  bool `json:"can_redo"`
}
