package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blueprint-backend/domain/core/aggregates"
)

// memoryStore is an in-memory CanvasStore for registry tests.
type memoryStore struct {
	snapshots map[string]*aggregates.Snapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snapshots: make(map[string]*aggregates.Snapshot)}
}

func (s *memoryStore) SaveSnapshot(_ context.Context, projectID string, snapshot *aggregates.Snapshot) error {
	s.snapshots[projectID] = snapshot
	return nil
}

func (s *memoryStore) LoadSnapshot(_ context.Context, projectID string) (*aggregates.Snapshot, error) {
	return s.snapshots[projectID], nil
}

func (s *memoryStore) DeleteSnapshot(_ context.Context, projectID string) error {
	delete(s.snapshots, projectID)
	return nil
}

func (s *memoryStore) ListProjects(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestProjectRegistry_OpenCreatesAndReuses(t *testing.T) {
	registry := NewProjectRegistry(nil, newMemoryStore(), zap.NewNop())
	ctx := context.Background()

	first, err := registry.Open(ctx, "p1")
	require.NoError(t, err)
	second, err := registry.Open(ctx, "p1")
	require.NoError(t, err)

	assert.Same(t, first, second, "an open project keeps one engine")

	_, err = registry.Open(ctx, "")
	assert.Error(t, err)
}

func TestProjectRegistry_SaveAndRehydrate(t *testing.T) {
	store := newMemoryStore()
	registry := NewProjectRegistry(nil, store, zap.NewNop())
	ctx := context.Background()

	svc, err := registry.Open(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.AddNode("feature", 0, 0)
	require.NoError(t, err)

	require.NoError(t, registry.Save(ctx, "p1"))
	require.NotNil(t, store.snapshots["p1"])

	// Close evicts the engine; reopening hydrates from the store with
	// clean history.
	require.NoError(t, registry.Close(ctx, "p1"))
	reopened, err := registry.Open(ctx, "p1")
	require.NoError(t, err)

	assert.NotSame(t, svc, reopened)
	assert.Len(t, reopened.Nodes(), 1)
	assert.False(t, reopened.CanUndo())
}

func TestProjectRegistry_SaveUnopenedProject(t *testing.T) {
	registry := NewProjectRegistry(nil, newMemoryStore(), zap.NewNop())

	err := registry.Save(context.Background(), "nope")
	assert.Error(t, err)
}

func TestProjectRegistry_SaveAll(t *testing.T) {
	store := newMemoryStore()
	registry := NewProjectRegistry(nil, store, zap.NewNop())
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		svc, err := registry.Open(ctx, id)
		require.NoError(t, err)
		_, err = svc.AddNode("note", 0, 0)
		require.NoError(t, err)
	}

	require.NoError(t, registry.SaveAll(ctx))
	assert.Len(t, store.snapshots, 2)
}

func TestProjectRegistry_DeleteProject(t *testing.T) {
	store := newMemoryStore()
	registry := NewProjectRegistry(nil, store, zap.NewNop())
	ctx := context.Background()

	svc, err := registry.Open(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.AddNode("note", 0, 0)
	require.NoError(t, err)
	require.NoError(t, registry.Save(ctx, "p1"))

	require.NoError(t, registry.DeleteProject(ctx, "p1"))

	assert.Empty(t, store.snapshots)
	fresh, err := registry.Open(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Nodes())
}
