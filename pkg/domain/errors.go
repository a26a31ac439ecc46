package domain

import "errors"

// ErrInvariantViolation is returned when a tree breaks a structural invariant
// (depth mismatch, dangling parent, duplicate id). It always indicates a bug.
var ErrInvariantViolation = errors.New("tree invariant violated")

// ErrNodeNotFound is returned by lookups that must resolve a node id.
var ErrNodeNotFound = errors.New("node not found")

// ErrUnknownOperation is returned when a command name does not map to an Operation.
var ErrUnknownOperation = errors.New("unknown operation")
