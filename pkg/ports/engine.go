package ports

import "github.com/aretw0/arbor/pkg/domain"

// Commands are the state-changing operations of a tree session.
// A failed precondition is reported through the boolean result, never as an error.
type Commands interface {
	AddChildToActive() bool
	SelectNode(id string) bool
	DeleteActiveNode() bool
	ResetGraph()
	Undo() bool
	Redo() bool
}

// Queries are the read-only accessors of a tree session.
// Returned nodes belong to the session and must not be modified.
type Queries interface {
	Root() *domain.Node
	ActiveNode() *domain.Node
	ActiveNodeID() string
	NextNodeID() int
	MaxDepth() int
	CanUndo() bool
	CanRedo() bool
	AllNodes() []*domain.Node
	HistoryStatus() domain.HistoryStatus
	Snapshot() domain.GraphState
}

// Observable lets presentation layers re-render after a change.
type Observable interface {
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func()) func()
}

// TreeSession is the full surface adapters drive.
type TreeSession interface {
	Commands
	Queries
	Observable
}
