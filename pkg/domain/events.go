package domain

import (
	"fmt"
	"strings"
	"time"
)

// Operation names a public session command.
type Operation string

const (
	OpAddChild Operation = "add"
	OpSelect   Operation = "select"
	OpDelete   Operation = "delete"
	OpReset    Operation = "reset"
	OpUndo     Operation = "undo"
	OpRedo     Operation = "redo"
)

// Operations lists every command in a stable order.
var Operations = []Operation{OpAddChild, OpSelect, OpDelete, OpReset, OpUndo, OpRedo}

// ParseOperation maps a command name (case-insensitive, with a few aliases) to an Operation.
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "add", "add-child", "add_child", "addchild":
		return OpAddChild, nil
	case "select", "sel", "go":
		return OpSelect, nil
	case "delete", "del", "rm", "remove":
		return OpDelete, nil
	case "reset", "clear":
		return OpReset, nil
	case "undo":
		return OpUndo, nil
	case "redo":
		return OpRedo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// RejectReason explains why a command did not change the session.
type RejectReason string

const (
	ReasonNoActiveNode  RejectReason = "no_active_node"
	ReasonMaxDepth      RejectReason = "max_depth_reached"
	ReasonEmptyTree     RejectReason = "empty_tree"
	ReasonNotFound      RejectReason = "node_not_found"
	ReasonNothingToUndo RejectReason = "nothing_to_undo"
	ReasonNothingToRedo RejectReason = "nothing_to_redo"
)

// ChangeEvent is emitted after a command changed the session.
type ChangeEvent struct {
	Timestamp    time.Time     `json:"timestamp"`
	Operation    Operation     `json:"operation"`
	ActiveNodeID string        `json:"active_node_id"`
	NodeCount    int           `json:"node_count"`
	MaxDepthSeen int           `json:"max_depth_seen"`
	History      HistoryStatus `json:"history"`
}

// RejectEvent is emitted when a command was a no-op because a precondition failed.
type RejectEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Operation Operation    `json:"operation"`
	Reason    RejectReason `json:"reason"`
}

// LifecycleHooks defines callbacks for session observability.
// Hooks run synchronously after the state change completed and must not call back
// into the session's commands.
type LifecycleHooks struct {
	OnChange func(*ChangeEvent)
	OnReject func(*RejectEvent)
}
