package domain

// Contract constants shared by the session and every adapter.
const (
	// MaxDepth is the deepest level a node may be created at. The root sits at depth 0.
	MaxDepth = 100

	// HistoryCapacity is the number of snapshots kept for undo/redo.
	HistoryCapacity = 50

	// RootID is the id (and label) of the root created on initialization and reset.
	RootID = "1"

	// FirstID is the allocator value used for RootID.
	FirstID = 1
)
