package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueprint-backend/domain/config"
	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

func createLayoutFixture(t *testing.T) (*LayoutEngine, *aggregates.Canvas) {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	return NewLayoutEngine(cfg), aggregates.NewCanvas(cfg)
}

func placeNode(t *testing.T, c *aggregates.Canvas, nodeType entities.NodeType, x, y float64) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	node, err := c.AddNode(nodeType, pos)
	require.NoError(t, err)
	return node
}

// assertNoOverlap fails if the node's box intersects any other node's box.
func assertNoOverlap(t *testing.T, e *LayoutEngine, c *aggregates.Canvas, id valueobjects.NodeID) {
	t.Helper()
	node := c.GetNode(id)
	require.NotNil(t, node)
	assert.False(t, e.overlapsAny(c, node, node.Position()),
		"node %s still overlaps at (%v, %v)", id, node.Position().X(), node.Position().Y())
}

func TestLayoutEngine_ResolveOverlap_KeepsFreePosition(t *testing.T) {
	e, c := createLayoutFixture(t)
	placeNode(t, c, entities.NodeTypeFeature, 0, 0)
	node := placeNode(t, c, entities.NodeTypeFeature, 1000, 1000)

	e.ResolveOverlap(c, node.ID())

	assert.Equal(t, 1000.0, node.Position().X())
	assert.Equal(t, 1000.0, node.Position().Y())
}

func TestLayoutEngine_ResolveOverlap_MovesToNearestFreeSlot(t *testing.T) {
	e, c := createLayoutFixture(t)
	anchor := placeNode(t, c, entities.NodeTypeFeature, 0, 0)
	overlapping := placeNode(t, c, entities.NodeTypeFeature, 10, 10)

	e.ResolveOverlap(c, overlapping.ID())

	assertNoOverlap(t, e, c, overlapping.ID())
	// The anchor never moves; only the resolved node does.
	assert.Equal(t, 0.0, anchor.Position().X())
	assert.Equal(t, 0.0, anchor.Position().Y())
}

func TestLayoutEngine_ResolveOverlap_DenseCluster(t *testing.T) {
	e, c := createLayoutFixture(t)
	for i := 0; i < 5; i++ {
		node := placeNode(t, c, entities.NodeTypeNote, 0, 0)
		e.ResolveOverlap(c, node.ID())
	}

	for _, node := range c.Nodes() {
		assertNoOverlap(t, e, c, node.ID())
	}
}

func TestLayoutEngine_ResolveOverlap_UnknownIDIsNoOp(t *testing.T) {
	e, c := createLayoutFixture(t)
	placeNode(t, c, entities.NodeTypeFeature, 0, 0)

	ghost, err := valueobjects.NewNodeIDFromString("feature-missing")
	require.NoError(t, err)
	e.ResolveOverlap(c, ghost)
}

func TestLayoutEngine_NodeHeight(t *testing.T) {
	e, c := createLayoutFixture(t)
	node := placeNode(t, c, entities.NodeTypeIdea, 0, 0)

	collapsed := e.NodeHeight(node)
	node.ToggleExpanded()
	expanded := e.NodeHeight(node)
	assert.Greater(t, expanded, collapsed)

	// Measured override beats the fallback table.
	e.SetMeasuredHeight(node.ID(), 333)
	assert.Equal(t, 333.0, e.NodeHeight(node))

	// Non-positive heights clear the override.
	e.SetMeasuredHeight(node.ID(), 0)
	assert.Equal(t, expanded, e.NodeHeight(node))
}

func TestLayoutEngine_AutoSpaceColumns(t *testing.T) {
	e, c := createLayoutFixture(t)
	cfg := config.DefaultDomainConfig()

	top := placeNode(t, c, entities.NodeTypeFeature, 0, 0)
	crowded := placeNode(t, c, entities.NodeTypeFeature, 5, 20)
	other := placeNode(t, c, entities.NodeTypeFeature, 1000, 10)

	e.AutoSpaceColumns(c)

	minTop := top.Position().Y() + e.NodeHeight(top) + cfg.VerticalGap
	assert.GreaterOrEqual(t, crowded.Position().Y(), minTop)
	assert.Equal(t, 5.0, crowded.Position().X(), "spacing only moves nodes vertically")
	assert.Equal(t, 10.0, other.Position().Y(), "distant columns are untouched")
}

func TestLayoutEngine_Realign_TypeColumns(t *testing.T) {
	e, c := createLayoutFixture(t)
	cfg := config.DefaultDomainConfig()

	idea := placeNode(t, c, entities.NodeTypeIdea, 523, -80)
	feature1 := placeNode(t, c, entities.NodeTypeFeature, -300, 40)
	feature2 := placeNode(t, c, entities.NodeTypeFeature, 111, -500)

	e.Realign(c)

	// Canonical order puts idea in column 0 and feature in column 1.
	assert.Equal(t, 0.0, idea.Position().X())
	assert.Equal(t, cfg.ColumnSpacingX, feature1.Position().X())
	assert.Equal(t, cfg.ColumnSpacingX, feature2.Position().X())

	// Row order follows prior y: feature2 sat higher, so it comes first.
	assert.Less(t, feature2.Position().Y(), feature1.Position().Y())
	gap := feature1.Position().Y() - (feature2.Position().Y() + e.NodeHeight(feature2))
	assert.InDelta(t, cfg.VerticalGap, gap, 1e-9)
}

func TestLayoutEngine_Realign_RestoresBaseline(t *testing.T) {
	e, c := createLayoutFixture(t)
	node := placeNode(t, c, entities.NodeTypeScreen, 120, 340)

	e.CaptureBaseline(c)

	moved, err := valueobjects.NewPosition(999, 999)
	require.NoError(t, err)
	c.MoveNode(node.ID(), moved)

	e.Realign(c)

	assert.Equal(t, 120.0, node.Position().X())
	assert.Equal(t, 340.0, node.Position().Y())
}

func TestLayoutEngine_Realign_SkipsDeletedBaselineNodes(t *testing.T) {
	e, c := createLayoutFixture(t)
	keep := placeNode(t, c, entities.NodeTypeScreen, 100, 100)
	gone := placeNode(t, c, entities.NodeTypeScreen, 200, 600)

	e.CaptureBaseline(c)
	c.RemoveNode(gone.ID())

	e.Realign(c)

	assert.Equal(t, 100.0, keep.Position().X())
}

func TestLayoutEngine_ExpandShiftRoundTrip(t *testing.T) {
	e, c := createLayoutFixture(t)

	toggled := placeNode(t, c, entities.NodeTypeFeature, 0, 0)
	below := placeNode(t, c, entities.NodeTypeFeature, 20, 300)
	above := placeNode(t, c, entities.NodeTypeFeature, 20, -300)
	elsewhere := placeNode(t, c, entities.NodeTypeFeature, 2000, 300)

	prev := e.NodeHeight(toggled)
	toggled.ToggleExpanded()
	delta := e.NodeHeight(toggled) - prev
	require.Greater(t, delta, 0.0)

	e.ApplyExpandShift(c, toggled.ID(), delta)

	assert.Equal(t, 300.0+delta, below.Position().Y())
	assert.Equal(t, -300.0, above.Position().Y(), "nodes above stay put")
	assert.Equal(t, 300.0, elsewhere.Position().Y(), "other columns stay put")

	reversed := e.ReverseExpandShift(c, toggled.ID())

	assert.True(t, reversed)
	assert.Equal(t, 300.0, below.Position().Y())

	// The recorded shift is consumed.
	assert.False(t, e.ReverseExpandShift(c, toggled.ID()))
}

func TestLayoutEngine_ReverseExpandShift_SkipsDeletedNodes(t *testing.T) {
	e, c := createLayoutFixture(t)
	toggled := placeNode(t, c, entities.NodeTypeFeature, 0, 0)
	below := placeNode(t, c, entities.NodeTypeFeature, 0, 300)

	e.ApplyExpandShift(c, toggled.ID(), 160)
	c.RemoveNode(below.ID())

	assert.True(t, e.ReverseExpandShift(c, toggled.ID()))
}

func TestLayoutEngine_ForgetAndReset(t *testing.T) {
	e, c := createLayoutFixture(t)
	node := placeNode(t, c, entities.NodeTypeNote, 0, 0)

	e.SetMeasuredHeight(node.ID(), 500)
	e.CaptureBaseline(c)
	e.Forget(node.ID())

	assert.NotEqual(t, 500.0, e.NodeHeight(node))

	e.SetMeasuredHeight(node.ID(), 500)
	e.Reset()
	assert.NotEqual(t, 500.0, e.NodeHeight(node))
}

func BenchmarkLayoutEngine_ResolveOverlap(b *testing.B) {
	cfg := config.DefaultDomainConfig()
	e := NewLayoutEngine(cfg)
	c := aggregates.NewCanvas(cfg)
	for i := 0; i < 50; i++ {
		pos, _ := valueobjects.NewPosition(0, 0)
		node, _ := c.AddNode(entities.NodeTypeFeature, pos)
		e.ResolveOverlap(c, node.ID())
	}
	pos, _ := valueobjects.NewPosition(0, 0)
	node, _ := c.AddNode(entities.NodeTypeFeature, pos)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.MoveNode(node.ID(), pos)
		e.ResolveOverlap(c, node.ID())
	}
}
