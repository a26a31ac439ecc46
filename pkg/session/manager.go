package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrMissingNodeID is returned when a select command carries no id.
var ErrMissingNodeID = errors.New("select requires a node id")

// Result describes the outcome of one command.
type Result struct {
	Operation domain.Operation     `json:"operation"`
	Changed   bool                 `json:"changed"`
	Reason    domain.RejectReason  `json:"reason,omitempty"`
	State     domain.GraphState    `json:"state"`
	History   domain.HistoryStatus `json:"history"`
	Diff      *domain.StateDiff    `json:"diff,omitempty"`
}

// Manager orchestrates session access, ensuring safe concurrent operations.
type Manager struct {
	session ports.TreeSession
	id      string

	mu sync.Mutex // Guards session

	lmu       sync.RWMutex
	listeners map[int]func(Result)
	nextID    int

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithSessionID stamps diffs with the given id.
func WithSessionID(id string) Option {
	return func(m *Manager) {
		m.id = id
	}
}

// NewManager creates a Manager guarding s.
func NewManager(s ports.TreeSession, opts ...Option) *Manager {
	m := &Manager{
		session:   s,
		listeners: make(map[int]func(Result)),
		logger:    logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the session id stamped on diffs.
func (m *Manager) ID() string {
	return m.id
}

// WithLock executes fn while holding the session lock.
// A context that is already done is rejected before the lock is taken; once fn runs it
// completes, since core commands are atomic.
func (m *Manager) WithLock(ctx context.Context, fn func(ports.TreeSession) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.session)
}

// Execute runs one command. arg is the node id for domain.OpSelect and ignored otherwise.
// A refused command is not an error: the Result reports Changed=false with a Reason.
func (m *Manager) Execute(ctx context.Context, op domain.Operation, arg string) (Result, error) {
	var res Result
	err := m.WithLock(ctx, func(s ports.TreeSession) error {
		before := s.Snapshot()

		changed, err := apply(s, op, arg)
		if err != nil {
			return err
		}

		res = Result{
			Operation: op,
			Changed:   changed,
			State:     s.Snapshot(),
			History:   s.HistoryStatus(),
		}
		if !changed {
			res.Reason = rejectReason(s, op)
			return nil
		}
		if diff := domain.Diff(&before, &res.State); diff != nil {
			diff.SessionID = m.id
			res.Diff = diff
		}
		// Listeners see results in commit order.
		m.broadcast(res)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.Changed {
		m.logger.Debug("Command applied", "operation", op, "active_node_id", res.State.ActiveNodeID)
	} else {
		m.logger.Debug("Command refused", "operation", op, "reason", res.Reason)
	}
	return res, nil
}

// View returns a snapshot of the live state and the history cursor.
func (m *Manager) View(ctx context.Context) (domain.GraphState, domain.HistoryStatus, error) {
	var state domain.GraphState
	var status domain.HistoryStatus
	err := m.WithLock(ctx, func(s ports.TreeSession) error {
		state = s.Snapshot()
		status = s.HistoryStatus()
		return nil
	})
	return state, status, err
}

// MaxDepth returns the depth limit of the guarded session.
func (m *Manager) MaxDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.MaxDepth()
}

// Listen registers fn to receive every applied Result, in commit order. fn runs under
// the session lock: it must not block or call back into the Manager.
// The returned function unregisters it.
func (m *Manager) Listen(fn func(Result)) func() {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) broadcast(res Result) {
	m.lmu.RLock()
	defer m.lmu.RUnlock()
	for _, fn := range m.listeners {
		fn(res)
	}
}

func apply(s ports.Commands, op domain.Operation, arg string) (bool, error) {
	switch op {
	case domain.OpAddChild:
		return s.AddChildToActive(), nil
	case domain.OpSelect:
		if arg == "" {
			return false, ErrMissingNodeID
		}
		return s.SelectNode(arg), nil
	case domain.OpDelete:
		return s.DeleteActiveNode(), nil
	case domain.OpReset:
		s.ResetGraph()
		return true, nil
	case domain.OpUndo:
		return s.Undo(), nil
	case domain.OpRedo:
		return s.Redo(), nil
	}
	return false, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op)
}

// rejectReason re-derives why a command was refused; a refused command leaves the
// session untouched, so its preconditions still hold.
func rejectReason(s ports.Queries, op domain.Operation) domain.RejectReason {
	switch op {
	case domain.OpAddChild:
		if s.ActiveNode() == nil {
			return domain.ReasonNoActiveNode
		}
		return domain.ReasonMaxDepth
	case domain.OpSelect:
		return domain.ReasonNotFound
	case domain.OpDelete:
		if s.Root() == nil {
			return domain.ReasonEmptyTree
		}
		return domain.ReasonNoActiveNode
	case domain.OpUndo:
		return domain.ReasonNothingToUndo
	case domain.OpRedo:
		return domain.ReasonNothingToRedo
	}
	return ""
}
