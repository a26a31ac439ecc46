package runtime

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithMaxDepth overrides domain.MaxDepth. Values below 0 are ignored.
func WithMaxDepth(depth int) Option {
	return func(s *Session) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithHistoryCapacity overrides domain.HistoryCapacity. Values below 1 are ignored.
func WithHistoryCapacity(capacity int) Option {
	return func(s *Session) {
		if capacity >= 1 {
			s.capacity = capacity
		}
	}
}

// WithStrictInvariants validates the tree after every change and panics on a violation.
func WithStrictInvariants(strict bool) Option {
	return func(s *Session) {
		s.strict = strict
	}
}
