package aggregates

import (
	"github.com/google/uuid"

	"blueprint-backend/domain/config"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
	"blueprint-backend/domain/events"
	pkgerrors "blueprint-backend/pkg/errors"
)

// CanvasID represents a unique canvas identifier. One canvas exists per
// open project.
type CanvasID string

// NewCanvasID creates a new random CanvasID
func NewCanvasID() CanvasID {
	return CanvasID(uuid.New().String())
}

// String returns the string representation
func (id CanvasID) String() string {
	return string(id)
}

// Canvas is the aggregate root for the planning canvas graph. It owns the
// node and edge collections and exposes the atomic mutation primitives;
// consistency (unique ids, no dangling edges) is enforced here.
//
// Node order is insertion order and is preserved across snapshot/restore so
// undo/redo round-trips are exact.
type Canvas struct {
	id     CanvasID
	nodes  []*entities.Node
	index  map[valueobjects.NodeID]*entities.Node
	edges  []*entities.Edge
	cfg    *config.DomainConfig
	events []events.DomainEvent
}

// Snapshot is a deep, alias-free copy of the full node/edge collection.
// Nothing in a snapshot is shared with live state.
type Snapshot struct {
	Nodes []*entities.Node
	Edges []*entities.Edge
}

// NewCanvas creates an empty canvas aggregate.
func NewCanvas(cfg *config.DomainConfig) *Canvas {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Canvas{
		id:    NewCanvasID(),
		index: make(map[valueobjects.NodeID]*entities.Node),
		cfg:   cfg,
	}
}

// ID returns the canvas identifier.
func (c *Canvas) ID() CanvasID {
	return c.id
}

// NodeCount returns the number of nodes on the canvas.
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// EdgeCount returns the number of edges on the canvas.
func (c *Canvas) EdgeCount() int {
	return len(c.edges)
}

// Nodes returns the nodes in insertion order. The slice is a copy; the
// node pointers are the live entities.
func (c *Canvas) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, len(c.nodes))
	copy(nodes, c.nodes)
	return nodes
}

// Edges returns the edges in insertion order. The slice is a copy.
func (c *Canvas) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, len(c.edges))
	copy(edges, c.edges)
	return edges
}

// GetNode retrieves a node by id, or nil when absent.
func (c *Canvas) GetNode(id valueobjects.NodeID) *entities.Node {
	return c.index[id]
}

// HasNode checks if a node exists on the canvas.
func (c *Canvas) HasNode(id valueobjects.NodeID) bool {
	_, ok := c.index[id]
	return ok
}

// AddNode places a new node of the given type at the given position and
// returns it. The node gets a fresh type-prefixed id and the type's default
// data record.
func (c *Canvas) AddNode(nodeType entities.NodeType, position valueobjects.Position) (*entities.Node, error) {
	node, err := entities.NewNode(nodeType, position)
	if err != nil {
		return nil, err
	}

	c.nodes = append(c.nodes, node)
	c.index[node.ID()] = node

	c.addEvent(events.NewNodeAdded(c.id.String(), node.ID(), string(nodeType)))
	return node, nil
}

// UpdateNodeFields shallow-merges the partial data record into the target
// node only. Unknown ids are a no-op; the return value reports whether a
// node was touched.
func (c *Canvas) UpdateNodeFields(id valueobjects.NodeID, partial map[string]string) bool {
	node, ok := c.index[id]
	if !ok {
		return false
	}
	node.MergeFields(partial)
	return true
}

// MoveNode places the node at a new position. Unknown ids are a no-op.
func (c *Canvas) MoveNode(id valueobjects.NodeID, position valueobjects.Position) bool {
	node, ok := c.index[id]
	if !ok {
		return false
	}
	node.MoveTo(position)
	return true
}

// RemoveNode deletes the node and every edge whose source or target matches
// it. Unknown ids are a no-op; the return value reports how many edges were
// cascaded away and whether the node existed.
func (c *Canvas) RemoveNode(id valueobjects.NodeID) (int, bool) {
	if _, ok := c.index[id]; !ok {
		return 0, false
	}

	removed := c.removeIncidentEdges(map[valueobjects.NodeID]bool{id: true})

	for i, node := range c.nodes {
		if node.ID().Equals(id) {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			break
		}
	}
	delete(c.index, id)

	c.addEvent(events.NewNodeRemoved(c.id.String(), id, removed))
	return removed, true
}

// RemoveSelected deletes every selected node (cascading their edges) and
// every independently selected edge. With nothing selected it mutates
// nothing and reports false.
func (c *Canvas) RemoveSelected() (nodesRemoved, edgesRemoved int, changed bool) {
	selectedNodes := make(map[valueobjects.NodeID]bool)
	for _, node := range c.nodes {
		if node.Selected() {
			selectedNodes[node.ID()] = true
		}
	}

	anySelectedEdge := false
	for _, edge := range c.edges {
		if edge.Selected {
			anySelectedEdge = true
			break
		}
	}

	if len(selectedNodes) == 0 && !anySelectedEdge {
		return 0, 0, false
	}

	edgesRemoved = c.removeIncidentEdges(selectedNodes)

	kept := c.edges[:0]
	for _, edge := range c.edges {
		if edge.Selected {
			edgesRemoved++
			continue
		}
		kept = append(kept, edge)
	}
	c.edges = kept

	keptNodes := c.nodes[:0]
	for _, node := range c.nodes {
		if selectedNodes[node.ID()] {
			delete(c.index, node.ID())
			nodesRemoved++
			c.addEvent(events.NewNodeRemoved(c.id.String(), node.ID(), 0))
			continue
		}
		keptNodes = append(keptNodes, node)
	}
	c.nodes = keptNodes

	return nodesRemoved, edgesRemoved, true
}

// Connect creates a directed edge between two existing nodes and returns
// it. Self-loops and parallel edges are structurally permitted; a fresh
// edge id is always produced. Dangling endpoints are a programmer error.
func (c *Canvas) Connect(sourceID, targetID valueobjects.NodeID) (*entities.Edge, error) {
	if !c.HasNode(sourceID) || !c.HasNode(targetID) {
		return nil, pkgerrors.NewValidationError("both nodes must exist on the canvas")
	}

	edge := entities.NewEdge(sourceID, targetID)
	c.edges = append(c.edges, edge)

	c.addEvent(events.NewNodesConnected(c.id.String(), edge.ID, sourceID, targetID))
	return edge, nil
}

// RemoveEdge deletes a single edge by id. Unknown ids are a no-op.
func (c *Canvas) RemoveEdge(edgeID string) bool {
	for i, edge := range c.edges {
		if edge.ID == edgeID {
			c.edges = append(c.edges[:i], c.edges[i+1:]...)
			c.addEvent(events.NewEdgeRemoved(c.id.String(), edgeID))
			return true
		}
	}
	return false
}

// SetNodeSelected sets a node's selection state. Unknown ids are a no-op.
func (c *Canvas) SetNodeSelected(id valueobjects.NodeID, selected bool) bool {
	node, ok := c.index[id]
	if !ok {
		return false
	}
	node.SetSelected(selected)
	return true
}

// SetEdgeSelected sets an edge's selection state. Unknown ids are a no-op.
func (c *Canvas) SetEdgeSelected(edgeID string, selected bool) bool {
	for _, edge := range c.edges {
		if edge.ID == edgeID {
			edge.Selected = selected
			return true
		}
	}
	return false
}

// ClearSelection deselects every node and edge.
func (c *Canvas) ClearSelection() {
	for _, node := range c.nodes {
		node.SetSelected(false)
	}
	for _, edge := range c.edges {
		edge.Selected = false
	}
}

// ToggleExpanded flips a node's expanded flag and returns the new state.
// Unknown ids report ok=false.
func (c *Canvas) ToggleExpanded(id valueobjects.NodeID) (expanded, ok bool) {
	node, exists := c.index[id]
	if !exists {
		return false, false
	}
	return node.ToggleExpanded(), true
}

// ToggleCompleted flips a node's completed flag and returns the new state.
// Unknown ids report ok=false.
func (c *Canvas) ToggleCompleted(id valueobjects.NodeID) (completed, ok bool) {
	node, exists := c.index[id]
	if !exists {
		return false, false
	}
	return node.ToggleCompleted(), true
}

// ReplaceAll swaps the whole graph for the given nodes and edges. The
// inputs are validated (unique node ids, no dangling endpoints) and cloned,
// so the caller keeps no aliases into live state.
func (c *Canvas) ReplaceAll(nodes []*entities.Node, edges []*entities.Edge) error {
	index, err := validateGraph(nodes, edges, nil)
	if err != nil {
		return err
	}

	c.nodes = cloneNodes(nodes)
	c.edges = cloneEdges(edges)
	c.index = make(map[valueobjects.NodeID]*entities.Node, len(index))
	for _, node := range c.nodes {
		c.index[node.ID()] = node
	}

	c.addEvent(events.NewCanvasReplaced(c.id.String(), len(c.nodes), len(c.edges)))
	return nil
}

// AppendAll adds the given nodes and edges to the existing graph. Edge
// endpoints may reference either appended or pre-existing nodes.
func (c *Canvas) AppendAll(nodes []*entities.Node, edges []*entities.Edge) error {
	if _, err := validateGraph(nodes, edges, c.index); err != nil {
		return err
	}

	for _, node := range cloneNodes(nodes) {
		c.nodes = append(c.nodes, node)
		c.index[node.ID()] = node
	}
	c.edges = append(c.edges, cloneEdges(edges)...)

	return nil
}

// TakeSnapshot returns a deep copy of the full graph state.
func (c *Canvas) TakeSnapshot() *Snapshot {
	return &Snapshot{
		Nodes: cloneNodes(c.nodes),
		Edges: cloneEdges(c.edges),
	}
}

// RestoreSnapshot replaces live state with a deep copy of the snapshot, so
// the snapshot stays reusable.
func (c *Canvas) RestoreSnapshot(s *Snapshot) {
	c.nodes = cloneNodes(s.Nodes)
	c.edges = cloneEdges(s.Edges)
	c.index = make(map[valueobjects.NodeID]*entities.Node, len(c.nodes))
	for _, node := range c.nodes {
		c.index[node.ID()] = node
	}
}

// Validate ensures graph invariants: index consistency and no orphaned
// edges.
func (c *Canvas) Validate() error {
	if len(c.index) != len(c.nodes) {
		return pkgerrors.NewInternalError("node index out of sync with node list")
	}
	for _, edge := range c.edges {
		if !c.HasNode(edge.SourceID) {
			return pkgerrors.NewInternalError("edge references non-existent source node")
		}
		if !c.HasNode(edge.TargetID) {
			return pkgerrors.NewInternalError("edge references non-existent target node")
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events.
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	drained := make([]events.DomainEvent, len(c.events))
	copy(drained, c.events)
	return drained
}

// MarkEventsAsCommitted clears all uncommitted events.
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = nil
}

// RecordEvent lets the orchestrator attach a canvas-level event (imports,
// bulk operations) to the aggregate's stream.
func (c *Canvas) RecordEvent(event events.DomainEvent) {
	c.addEvent(event)
}

// Private helpers

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

// removeIncidentEdges drops every edge touching one of the given nodes and
// returns how many were removed.
func (c *Canvas) removeIncidentEdges(nodeIDs map[valueobjects.NodeID]bool) int {
	if len(nodeIDs) == 0 {
		return 0
	}
	removed := 0
	kept := c.edges[:0]
	for _, edge := range c.edges {
		if nodeIDs[edge.SourceID] || nodeIDs[edge.TargetID] {
			removed++
			continue
		}
		kept = append(kept, edge)
	}
	c.edges = kept
	return removed
}

// validateGraph checks incoming nodes and edges for unique ids and resolvable
// endpoints. existing may be nil for a full replace.
func validateGraph(
	nodes []*entities.Node,
	edges []*entities.Edge,
	existing map[valueobjects.NodeID]*entities.Node,
) (map[valueobjects.NodeID]bool, error) {
	known := make(map[valueobjects.NodeID]bool, len(nodes)+len(existing))
	for id := range existing {
		known[id] = true
	}
	for _, node := range nodes {
		if node == nil {
			return nil, pkgerrors.NewValidationError("node cannot be nil")
		}
		if known[node.ID()] {
			return nil, pkgerrors.NewConflictError("duplicate node id: " + node.ID().String())
		}
		known[node.ID()] = true
	}
	for _, edge := range edges {
		if edge == nil {
			return nil, pkgerrors.NewValidationError("edge cannot be nil")
		}
		if !known[edge.SourceID] || !known[edge.TargetID] {
			return nil, pkgerrors.NewValidationError("edge references non-existent node: " + edge.ID)
		}
	}
	return known, nil
}

func cloneNodes(nodes []*entities.Node) []*entities.Node {
	cloned := make([]*entities.Node, len(nodes))
	for i, node := range nodes {
		cloned[i] = node.Clone()
	}
	return cloned
}

func cloneEdges(edges []*entities.Edge) []*entities.Edge {
	cloned := make([]*entities.Edge, len(edges))
	for i, edge := range edges {
		cloned[i] = edge.Clone()
	}
	return cloned
}
