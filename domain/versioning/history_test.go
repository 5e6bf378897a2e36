package versioning

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

// snapshotWithNodes builds a snapshot with n placeholder nodes so stack
// entries are distinguishable by size.
func snapshotWithNodes(t *testing.T, n int) *aggregates.Snapshot {
	t.Helper()
	nodes := make([]*entities.Node, 0, n)
	for i := 0; i < n; i++ {
		id, err := valueobjects.NewNodeIDFromString("note-" + strconv.Itoa(i))
		require.NoError(t, err)
		pos, err := valueobjects.NewPosition(float64(i)*10, 0)
		require.NoError(t, err)
		node, err := entities.ReconstructNode(id, entities.NodeTypeNote, pos, nil, false, false, 0, false)
		require.NoError(t, err)
		nodes = append(nodes, node)
	}
	return &aggregates.Snapshot{Nodes: nodes}
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h := NewHistory(20)

	empty := snapshotWithNodes(t, 0)
	one := snapshotWithNodes(t, 1)
	two := snapshotWithNodes(t, 2)

	// Two mutations: empty -> one -> two.
	h.Push(empty)
	h.Push(one)

	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	restored := h.Undo(two)
	require.NotNil(t, restored)
	assert.Len(t, restored.Nodes, 1)
	assert.True(t, h.CanRedo())

	restored = h.Undo(restored)
	require.NotNil(t, restored)
	assert.Len(t, restored.Nodes, 0)
	assert.False(t, h.CanUndo())

	restored = h.Redo(restored)
	require.NotNil(t, restored)
	assert.Len(t, restored.Nodes, 1)

	restored = h.Redo(restored)
	require.NotNil(t, restored)
	assert.Len(t, restored.Nodes, 2)
	assert.False(t, h.CanRedo())
}

func TestHistory_EmptyStacksAreNoOps(t *testing.T) {
	h := NewHistory(20)
	current := snapshotWithNodes(t, 3)

	assert.Nil(t, h.Undo(current))
	assert.Nil(t, h.Redo(current))
	assert.Zero(t, h.PastLen())
	assert.Zero(t, h.FutureLen(), "failed undo must not touch the future stack")
}

func TestHistory_CapacityDiscardsOldest(t *testing.T) {
	h := NewHistory(20)

	for i := 0; i <= 25; i++ {
		h.Push(snapshotWithNodes(t, i))
	}

	assert.Equal(t, 20, h.PastLen())

	// Unwind completely: the deepest reachable state is the one pushed
	// sixth from the end (snapshots 6..25 survive).
	var last *aggregates.Snapshot
	current := snapshotWithNodes(t, 99)
	for h.CanUndo() {
		last = h.Undo(current)
		current = last
	}
	require.NotNil(t, last)
	assert.Len(t, last.Nodes, 6)
}

func TestHistory_PushClearsFuture(t *testing.T) {
	h := NewHistory(20)
	h.Push(snapshotWithNodes(t, 0))
	h.Push(snapshotWithNodes(t, 1))

	_ = h.Undo(snapshotWithNodes(t, 2))
	require.True(t, h.CanRedo())

	// A new action after an undo forks the timeline.
	h.Push(snapshotWithNodes(t, 1))

	assert.False(t, h.CanRedo())
	assert.Zero(t, h.FutureLen())
}

func TestHistory_MinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push(snapshotWithNodes(t, 1))
	h.Push(snapshotWithNodes(t, 2))

	assert.Equal(t, 1, h.PastLen())
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(20)
	h.Push(snapshotWithNodes(t, 1))
	_ = h.Undo(snapshotWithNodes(t, 2))

	h.Clear()

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
