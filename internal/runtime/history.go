package runtime

import "github.com/aretw0/arbor/pkg/domain"

// History is a bounded, linear sequence of snapshots with a cursor.
// entries[cursor] is always the most recently committed or restored state.
// Entries are owned exclusively by History; callers get deep copies back.
type History struct {
	entries  []domain.GraphState
	cursor   int
	capacity int
}

// NewHistory creates a history holding only initial.
// A capacity below 1 falls back to domain.HistoryCapacity.
func NewHistory(initial domain.GraphState, capacity int) *History {
	if capacity < 1 {
		capacity = domain.HistoryCapacity
	}
	h := &History{capacity: capacity}
	h.entries = append(h.entries, cloneState(initial))
	return h
}

// Commit records state as the newest entry.
// Entries after the cursor are discarded first (branch-on-write). When the capacity is
// exceeded the oldest entry is dropped and the cursor stays where it is, which leaves it
// on the newest entry after the window slides.
func (h *History) Commit(state domain.GraphState) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, cloneState(state))

	if len(h.entries) > h.capacity {
		h.entries[0] = domain.GraphState{}
		h.entries = h.entries[1:]
		return
	}
	h.cursor++
}

// CanUndo reports whether an older entry exists.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a newer entry exists.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Undo moves the cursor back and returns a copy of the entry it lands on.
// It is a no-op returning false when CanUndo is false.
func (h *History) Undo() (domain.GraphState, bool) {
	if !h.CanUndo() {
		return domain.GraphState{}, false
	}
	h.cursor--
	return cloneState(h.entries[h.cursor]), true
}

// Redo moves the cursor forward and returns a copy of the entry it lands on.
// It is a no-op returning false when CanRedo is false.
func (h *History) Redo() (domain.GraphState, bool) {
	if !h.CanRedo() {
		return domain.GraphState{}, false
	}
	h.cursor++
	return cloneState(h.entries[h.cursor]), true
}

// Amend records a new selection on the current entry without creating a step.
// After an Undo the current entry is an older one: it is rewritten in place and the
// entries ahead of it are kept, so a following Redo moves past it unchanged.
func (h *History) Amend(activeID string) {
	h.entries[h.cursor].ActiveNodeID = activeID
}

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the current index.
func (h *History) Cursor() int { return h.cursor }

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int { return h.capacity }

// Status summarizes the cursor for observers.
func (h *History) Status() domain.HistoryStatus {
	return domain.HistoryStatus{
		Cursor:   h.cursor,
		Len:      len(h.entries),
		Capacity: h.capacity,
		CanUndo:  h.CanUndo(),
		CanRedo:  h.CanRedo(),
	}
}

func cloneState(s domain.GraphState) domain.GraphState {
	return domain.GraphState{
		Root:         Clone(s.Root),
		ActiveNodeID: s.ActiveNodeID,
		NextID:       s.NextID,
	}
}
