package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Session owns the live tree, the active node, the allocator and the history.
// It is single-threaded: callers that share a Session across goroutines must serialize
// access themselves (see pkg/session).
//
// Every command runs to completion synchronously. A command either performs the whole
// commit, install, notify sequence or changes nothing.
type Session struct {
	root     *domain.Node
	activeID string
	alloc    *Allocator
	history  *History

	maxDepth int
	capacity int
	strict   bool

	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	observers map[int]func()
	nextObs   int
	now       func() time.Time
}

// NewSession creates a session holding a single root node "1", which is active.
func NewSession(opts ...Option) *Session {
	s := &Session{
		maxDepth:  domain.MaxDepth,
		capacity:  domain.HistoryCapacity,
		logger:    logging.NewNop(),
		observers: make(map[int]func()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.alloc = NewAllocator(domain.FirstID)
	root := domain.NewRoot(s.alloc.NextLabel())
	s.root = root
	s.activeID = root.ID
	s.history = NewHistory(s.current(), s.capacity)
	s.check(domain.OpReset)

	return s
}

// AddChildToActive appends a new node under the active node and selects it.
// It returns false, changing nothing, when no node is active or the active node is
// already at the maximum depth.
func (s *Session) AddChildToActive() bool {
	active := s.ActiveNode()
	if active == nil {
		s.reject(domain.OpAddChild, domain.ReasonNoActiveNode)
		return false
	}
	if active.Depth >= s.maxDepth {
		s.reject(domain.OpAddChild, domain.ReasonMaxDepth)
		return false
	}

	child := domain.NewChild(active, s.alloc.NextLabel())
	next := AddChild(s.root, active.ID, child)
	s.apply(domain.OpAddChild, next, child.ID)
	return true
}

// SelectNode makes id the active node. Unknown ids leave the session untouched.
// Selection is recorded on the current history entry but is not an undoable step.
func (s *Session) SelectNode(id string) bool {
	n := FindByID(s.root, id)
	if n == nil {
		s.reject(domain.OpSelect, domain.ReasonNotFound)
		return false
	}
	s.activeID = n.ID
	s.history.Amend(n.ID)
	s.emit(domain.OpSelect)
	return true
}

// DeleteActiveNode removes the active node with its subtree and selects its former
// parent. Deleting the root is a full reset.
func (s *Session) DeleteActiveNode() bool {
	if s.root == nil {
		s.reject(domain.OpDelete, domain.ReasonEmptyTree)
		return false
	}
	active := s.ActiveNode()
	if active == nil {
		s.reject(domain.OpDelete, domain.ReasonNoActiveNode)
		return false
	}

	if active.IsRoot() {
		s.reset(domain.OpDelete)
		return true
	}

	next, ok := RemoveSubtree(s.root, active.ID)
	if !ok {
		s.reject(domain.OpDelete, domain.ReasonNotFound)
		return false
	}
	s.apply(domain.OpDelete, next, active.ParentID)
	return true
}

// ResetGraph discards the tree and restarts from a single root "1".
func (s *Session) ResetGraph() {
	s.reset(domain.OpReset)
}

// Undo restores the previous history entry. It is a no-op returning false when there
// is nothing to undo.
func (s *Session) Undo() bool {
	state, ok := s.history.Undo()
	if !ok {
		s.reject(domain.OpUndo, domain.ReasonNothingToUndo)
		return false
	}
	s.restore(domain.OpUndo, state)
	return true
}

// Redo restores the next history entry. It is a no-op returning false when there is
// nothing to redo.
func (s *Session) Redo() bool {
	state, ok := s.history.Redo()
	if !ok {
		s.reject(domain.OpRedo, domain.ReasonNothingToRedo)
		return false
	}
	s.restore(domain.OpRedo, state)
	return true
}

// CanUndo reports whether Undo would change the session.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change the session.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Root returns the live tree. It must not be modified.
func (s *Session) Root() *domain.Node { return s.root }

// ActiveNode returns the selected node, or nil.
func (s *Session) ActiveNode() *domain.Node {
	if s.activeID == "" {
		return nil
	}
	return FindByID(s.root, s.activeID)
}

// ActiveNodeID returns the id of the selected node, or "".
func (s *Session) ActiveNodeID() string { return s.activeID }

// NextNodeID returns the value the next created node will receive.
func (s *Session) NextNodeID() int { return s.alloc.Peek() }

// MaxDepth returns the deepest level a node may be created at.
func (s *Session) MaxDepth() int { return s.maxDepth }

// HistoryCapacity returns the number of snapshots kept.
func (s *Session) HistoryCapacity() int { return s.history.Capacity() }

// HistoryStatus describes the undo/redo cursor.
func (s *Session) HistoryStatus() domain.HistoryStatus { return s.history.Status() }

// AllNodes lists the live tree depth-first, parents before children.
// The nodes must not be modified.
func (s *Session) AllNodes() []*domain.Node { return Flatten(s.root) }

// Snapshot returns a linked deep copy of the live state that the caller owns.
func (s *Session) Snapshot() domain.GraphState {
	return domain.GraphState{
		Root:         Relink(Clone(s.root)),
		ActiveNodeID: s.activeID,
		NextID:       s.alloc.Peek(),
	}
}

// Subscribe registers fn to be called after every successful command.
// Observers get no payload; they re-read the session. The returned function unsubscribes.
func (s *Session) Subscribe(fn func()) func() {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

func (s *Session) reset(op domain.Operation) {
	s.alloc.Reset(domain.FirstID)
	root := domain.NewRoot(s.alloc.NextLabel())
	s.apply(op, root, root.ID)
}

// apply commits the new version and then installs it as the live state.
func (s *Session) apply(op domain.Operation, root *domain.Node, activeID string) {
	s.history.Commit(domain.GraphState{
		Root:         root,
		ActiveNodeID: activeID,
		NextID:       s.alloc.Peek(),
	})
	s.root = root
	s.activeID = activeID
	s.check(op)
	s.emit(op)
}

func (s *Session) restore(op domain.Operation, state domain.GraphState) {
	s.root = Relink(state.Root)
	s.alloc.Reset(state.NextID)
	s.activeID = ""
	if n := FindByID(s.root, state.ActiveNodeID); n != nil {
		s.activeID = n.ID
	}
	s.check(op)
	s.emit(op)
}

func (s *Session) current() domain.GraphState {
	return domain.GraphState{
		Root:         s.root,
		ActiveNodeID: s.activeID,
		NextID:       s.alloc.Peek(),
	}
}

// check fails loudly on a broken tree in strict mode.
func (s *Session) check(op domain.Operation) {
	if !s.strict {
		return
	}
	if err := Validate(s.root); err != nil {
		s.logger.Error("Tree invariant violated", "operation", op, "err", err)
		panic(err)
	}
}

func (s *Session) emit(op domain.Operation) {
	count, deepest := 0, 0
	s.root.Walk(func(n *domain.Node) bool {
		count++
		if n.Depth > deepest {
			deepest = n.Depth
		}
		return true
	})

	status := s.history.Status()
	s.logger.Debug("Session changed",
		"operation", op,
		"active_node_id", s.activeID,
		"nodes", count,
		"cursor", status.Cursor,
		"history_len", status.Len,
	)

	if s.hooks.OnChange != nil {
		s.hooks.OnChange(&domain.ChangeEvent{
			Timestamp:    s.now(),
			Operation:    op,
			ActiveNodeID: s.activeID,
			NodeCount:    count,
			MaxDepthSeen: deepest,
			History:      status,
		})
	}

	for _, fn := range s.observers {
		fn()
	}
}

func (s *Session) reject(op domain.Operation, reason domain.RejectReason) {
	s.logger.Debug("Command rejected", "operation", op, "reason", reason)
	if s.hooks.OnReject != nil {
		s.hooks.OnReject(&domain.RejectEvent{
			Timestamp: s.now(),
			Operation: op,
			Reason:    reason,
		})
	}
}
