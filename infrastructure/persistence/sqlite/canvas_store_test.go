package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

func createTestStore(t *testing.T) *CanvasStore {
	t.Helper()
	store, err := NewCanvasStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testSnapshot(t *testing.T) *aggregates.Snapshot {
	t.Helper()
	id1, err := valueobjects.NewNodeIDFromString("feature-1")
	require.NoError(t, err)
	id2, err := valueobjects.NewNodeIDFromString("screen-1")
	require.NoError(t, err)

	pos1, err := valueobjects.NewPosition(10, 20)
	require.NoError(t, err)
	pos2, err := valueobjects.NewPosition(400, -35.5)
	require.NoError(t, err)

	node1, err := entities.ReconstructNode(id1, entities.NodeTypeFeature, pos1,
		map[string]string{"name": "Auth", "priority": "high"}, true, false, 2, false)
	require.NoError(t, err)
	node2, err := entities.ReconstructNode(id2, entities.NodeTypeScreen, pos2,
		map[string]string{"name": "Login"}, false, true, 0, false)
	require.NoError(t, err)

	return &aggregates.Snapshot{
		Nodes: []*entities.Node{node1, node2},
		Edges: []*entities.Edge{{ID: "edge-1", SourceID: id1, TargetID: id2}},
	}
}

func TestCanvasStore_SaveLoadRoundTrip(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "p1", testSnapshot(t)))

	loaded, err := store.LoadSnapshot(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Nodes, 2)
	require.Len(t, loaded.Edges, 1)

	first := loaded.Nodes[0]
	assert.Equal(t, "feature-1", first.ID().String())
	assert.Equal(t, entities.NodeTypeFeature, first.Type())
	assert.Equal(t, 10.0, first.Position().X())
	assert.Equal(t, "high", first.Fields().Get("priority"))
	assert.True(t, first.Expanded())
	assert.Equal(t, 2, first.ZIndex())

	second := loaded.Nodes[1]
	assert.Equal(t, -35.5, second.Position().Y())
	assert.True(t, second.Completed())

	edge := loaded.Edges[0]
	assert.Equal(t, "edge-1", edge.ID)
	assert.Equal(t, "feature-1", edge.SourceID.String())
	assert.Equal(t, "screen-1", edge.TargetID.String())
}

func TestCanvasStore_SaveOverwrites(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "p1", testSnapshot(t)))
	require.NoError(t, store.SaveSnapshot(ctx, "p1", &aggregates.Snapshot{}))

	loaded, err := store.LoadSnapshot(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Nodes)
	assert.Empty(t, loaded.Edges)
}

func TestCanvasStore_LoadUnknownProject(t *testing.T) {
	store := createTestStore(t)

	loaded, err := store.LoadSnapshot(context.Background(), "never-saved")

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCanvasStore_NilSnapshotRejected(t *testing.T) {
	store := createTestStore(t)

	err := store.SaveSnapshot(context.Background(), "p1", nil)
	assert.Error(t, err)
}

func TestCanvasStore_ListAndDelete(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, "alpha", testSnapshot(t)))
	require.NoError(t, store.SaveSnapshot(ctx, "beta", &aggregates.Snapshot{}))

	ids, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, ids)

	require.NoError(t, store.DeleteSnapshot(ctx, "alpha"))

	ids, err = store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, ids)

	// Deleting a missing project is a no-op.
	require.NoError(t, store.DeleteSnapshot(ctx, "alpha"))
}
