package versioning

import (
	"blueprint-backend/domain/core/aggregates"
)

// History is the undo/redo state machine over canvas snapshots: a bounded
// past stack, the live graph owned by the caller, and a future stack that
// is cleared whenever a new mutation is pushed.
//
// Snapshots handed in must already be deep copies (see
// aggregates.Canvas.TakeSnapshot); History never clones.
type History struct {
	past     []*aggregates.Snapshot
	future   []*aggregates.Snapshot
	capacity int
}

// NewHistory creates a history with the given capacity. Capacities below 1
// fall back to 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Push records the pre-mutation state. Called once per logical user action,
// before the change is applied. The oldest entry is discarded when the past
// stack is full, and any redo future is invalidated.
func (h *History) Push(snapshot *aggregates.Snapshot) {
	h.past = append(h.past, snapshot)
	if len(h.past) > h.capacity {
		h.past = h.past[len(h.past)-h.capacity:]
	}
	h.future = nil
}

// Undo exchanges the current state for the most recent past entry. The
// current snapshot moves onto the future stack. Returns nil when there is
// nothing to undo.
func (h *History) Undo(current *aggregates.Snapshot) *aggregates.Snapshot {
	if len(h.past) == 0 {
		return nil
	}
	top := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return top
}

// Redo is symmetric to Undo. Returns nil when there is nothing to redo.
func (h *History) Redo(current *aggregates.Snapshot) *aggregates.Snapshot {
	if len(h.future) == 0 {
		return nil
	}
	top := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return top
}

// CanUndo reports whether the past stack is non-empty.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// PastLen returns the depth of the past stack.
func (h *History) PastLen() int {
	return len(h.past)
}

// FutureLen returns the depth of the future stack.
func (h *History) FutureLen() int {
	return len(h.future)
}

// Clear drops both stacks. Used on project switch.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
