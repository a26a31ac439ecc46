package arbor

import (
	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// Session is the high-level entry point for the Arbor library.
// It wraps the internal runtime and provides the command/query surface that
// presentation layers call. A Session is not safe for concurrent use; wrap it in a
// session.Manager when several goroutines drive it.
type Session struct {
	runtime *runtime.Session
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	maxDepth int
	capacity int
	strict   bool

	// ID identifies this session instance in logs and adapter payloads.
	ID string
}

var _ ports.TreeSession = (*Session)(nil)

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithMaxDepth overrides the depth limit (default domain.MaxDepth).
func WithMaxDepth(depth int) Option {
	return func(s *Session) {
		s.maxDepth = depth
	}
}

// WithHistoryCapacity overrides the number of undo snapshots (default domain.HistoryCapacity).
func WithHistoryCapacity(capacity int) Option {
	return func(s *Session) {
		s.capacity = capacity
	}
}

// WithStrictInvariants validates the tree after every change and panics on a violation.
// Intended for development and tests.
func WithStrictInvariants(strict bool) Option {
	return func(s *Session) {
		s.strict = strict
	}
}

// WithSessionID sets the instance id instead of a random UUID.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.ID = id
	}
}

// New initializes a session holding a single active root node "1".
func New(opts ...Option) *Session {
	s := &Session{
		maxDepth: domain.MaxDepth,
		capacity: domain.HistoryCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = s.logger.With("session_id", s.ID)

	s.runtime = runtime.NewSession(
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithMaxDepth(s.maxDepth),
		runtime.WithHistoryCapacity(s.capacity),
		runtime.WithStrictInvariants(s.strict),
	)
	return s
}

// AddChildToActive creates a child of the active node and selects it.
// It returns false when no node is active or the depth limit is reached; the caller
// should tell the user.
func (s *Session) AddChildToActive() bool {
	return s.runtime.AddChildToActive()
}

// SelectNode makes id the active node. Unknown ids are ignored and return false.
func (s *Session) SelectNode(id string) bool {
	return s.runtime.SelectNode(id)
}

// DeleteActiveNode removes the active node and its subtree, selecting the former parent.
// Deleting the root resets the whole tree.
func (s *Session) DeleteActiveNode() bool {
	return s.runtime.DeleteActiveNode()
}

// ResetGraph starts over from a single root "1". It can be undone.
func (s *Session) ResetGraph() {
	s.runtime.ResetGraph()
}

// Undo steps back one change. It returns false when there is nothing to undo.
func (s *Session) Undo() bool {
	return s.runtime.Undo()
}

// Redo re-applies an undone change. It returns false when there is nothing to redo.
func (s *Session) Redo() bool {
	return s.runtime.Redo()
}

// CanUndo reports whether Undo would change the tree.
func (s *Session) CanUndo() bool { return s.runtime.CanUndo() }

// CanRedo reports whether Redo would change the tree.
func (s *Session) CanRedo() bool { return s.runtime.CanRedo() }

// Root returns the live root. It must not be modified.
func (s *Session) Root() *domain.Node { return s.runtime.Root() }

// ActiveNode returns the selected node, or nil.
func (s *Session) ActiveNode() *domain.Node { return s.runtime.ActiveNode() }

// ActiveNodeID returns the selected node id, or "".
func (s *Session) ActiveNodeID() string { return s.runtime.ActiveNodeID() }

// NextNodeID returns the label value the next node will receive.
func (s *Session) NextNodeID() int { return s.runtime.NextNodeID() }

// MaxDepth returns the depth limit.
func (s *Session) MaxDepth() int { return s.runtime.MaxDepth() }

// AllNodes lists the tree depth-first, parents before children.
func (s *Session) AllNodes() []*domain.Node { return s.runtime.AllNodes() }

// HistoryStatus describes the undo/redo cursor.
func (s *Session) HistoryStatus() domain.HistoryStatus { return s.runtime.HistoryStatus() }

// Snapshot returns a deep copy of the live state owned by the caller.
func (s *Session) Snapshot() domain.GraphState { return s.runtime.Snapshot() }

// Subscribe registers fn to run after every successful command.
func (s *Session) Subscribe(fn func()) func() { return s.runtime.Subscribe(fn) }
