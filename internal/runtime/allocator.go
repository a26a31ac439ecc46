package runtime

import "github.com/aretw0/arbor/pkg/domain"

// Allocator hands out node labels from a monotonic counter.
// Labels are never recycled; only a full reset or a history restore moves the counter back.
type Allocator struct {
	next int
}

// NewAllocator creates an allocator whose first label is next.
func NewAllocator(next int) *Allocator {
	return &Allocator{next: next}
}

// NextLabel returns the current value as a label and advances the counter.
func (a *Allocator) NextLabel() string {
	label := domain.FormatID(a.next)
	a.next++
	return label
}

// Peek returns the value the next label will carry.
func (a *Allocator) Peek() int {
	return a.next
}

// Reset moves the counter to next.
func (a *Allocator) Reset(next int) {
	a.next = next
}
