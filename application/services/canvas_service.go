package services

import (
	"sync"

	"go.uber.org/zap"

	"blueprint-backend/domain/config"
	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
	"blueprint-backend/domain/events"
	domainservices "blueprint-backend/domain/services"
	"blueprint-backend/domain/versioning"
)

// CanvasService is the orchestrator combining the canvas aggregate, its
// undo/redo history, the layout engine, and the import matcher/merger into
// the public operation surface. One instance exists per open project.
//
// The engine underneath is single-threaded and synchronous; the mutex here
// only serializes concurrent HTTP handlers entering the same project.
type CanvasService struct {
	mu        sync.Mutex
	projectID string
	canvas    *aggregates.Canvas
	history   *versioning.History
	layout    *domainservices.LayoutEngine
	matcher   *domainservices.NameMatcher
	merger    *domainservices.FieldMerger
	logger    *zap.Logger
}

// ImportSummary reports what a smart import changed.
type ImportSummary struct {
	NodesUpdated int `json:"nodes_updated"`
	NodesSkipped int `json:"nodes_skipped"`
	NodesAdded   int `json:"nodes_added"`
	EdgesAdded   int `json:"edges_added"`
}

// NewCanvasService creates the engine for one project.
func NewCanvasService(projectID string, cfg *config.DomainConfig, logger *zap.Logger) *CanvasService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasService{
		projectID: projectID,
		canvas:    aggregates.NewCanvas(cfg),
		history:   versioning.NewHistory(cfg.HistoryCapacity),
		layout:    domainservices.NewLayoutEngine(cfg),
		matcher:   domainservices.NewNameMatcher(cfg),
		merger:    domainservices.NewFieldMerger(),
		logger:    logger.With(zap.String("projectID", projectID)),
	}
}

// ProjectID returns the owning project id.
func (s *CanvasService) ProjectID() string {
	return s.projectID
}

// AddNode places a new node, resolves any overlap at its position, and
// re-spaces the affected column. One history entry is recorded.
func (s *CanvasService) AddNode(nodeType string, x, y float64) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return nil, err
	}

	snapshot := s.canvas.TakeSnapshot()
	node, err := s.canvas.AddNode(entities.NodeType(nodeType), position)
	if err != nil {
		return nil, err
	}

	s.layout.ResolveOverlap(s.canvas, node.ID())
	s.layout.AutoSpaceColumns(s.canvas)
	s.history.Push(snapshot)
	s.drainEvents()
	return node, nil
}

// UpdateNodeData shallow-merges a partial data record into one node. This
// is an in-place field edit: no history entry is recorded, keeping undo
// granularity coarse. Unknown ids are a no-op.
func (s *CanvasService) UpdateNodeData(nodeID string, partial map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return false
	}
	return s.canvas.UpdateNodeFields(id, partial)
}

// MoveNode records a completed drag: the node moves to the drop position,
// overlap is resolved, and the column re-spaced. Unknown ids are a no-op
// and record no history.
func (s *CanvasService) MoveNode(nodeID string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return false
	}
	position, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return false
	}
	if !s.canvas.HasNode(id) {
		return false
	}

	snapshot := s.canvas.TakeSnapshot()
	s.canvas.MoveNode(id, position)
	s.layout.ResolveOverlap(s.canvas, id)
	s.layout.AutoSpaceColumns(s.canvas)
	s.history.Push(snapshot)
	return true
}

// DeleteNode removes a node and every incident edge. Unknown ids are a
// no-op and record no history.
func (s *CanvasService) DeleteNode(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return false
	}
	if !s.canvas.HasNode(id) {
		return false
	}

	snapshot := s.canvas.TakeSnapshot()
	s.canvas.RemoveNode(id)
	s.layout.Forget(id)
	s.history.Push(snapshot)
	s.drainEvents()
	return true
}

// DeleteSelected removes every selected node and edge. With nothing
// selected it leaves the graph and both history stacks untouched.
func (s *CanvasService) DeleteSelected() (nodesRemoved, edgesRemoved int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var selectedIDs []valueobjects.NodeID
	for _, node := range s.canvas.Nodes() {
		if node.Selected() {
			selectedIDs = append(selectedIDs, node.ID())
		}
	}

	snapshot := s.canvas.TakeSnapshot()
	nodesRemoved, edgesRemoved, changed := s.canvas.RemoveSelected()
	if !changed {
		return 0, 0
	}

	for _, id := range selectedIDs {
		s.layout.Forget(id)
	}
	s.history.Push(snapshot)
	s.drainEvents()
	return nodesRemoved, edgesRemoved
}

// Connect creates an edge between two existing nodes. Self-loops and
// parallel edges are permitted; each call produces a fresh edge id.
func (s *CanvasService) Connect(sourceID, targetID string) (*entities.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := valueobjects.NewNodeIDFromString(sourceID)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNodeIDFromString(targetID)
	if err != nil {
		return nil, err
	}

	snapshot := s.canvas.TakeSnapshot()
	edge, err := s.canvas.Connect(source, target)
	if err != nil {
		return nil, err
	}
	s.history.Push(snapshot)
	s.drainEvents()
	return edge, nil
}

// DeleteEdge removes a single edge. Unknown ids are a no-op and record no
// history.
func (s *CanvasService) DeleteEdge(edgeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	if !s.canvas.RemoveEdge(edgeID) {
		return false
	}
	s.history.Push(snapshot)
	s.drainEvents()
	return true
}

// SetSelection replaces the current selection.
func (s *CanvasService) SetSelection(nodeIDs, edgeIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas.ClearSelection()
	for _, raw := range nodeIDs {
		if id, err := valueobjects.NewNodeIDFromString(raw); err == nil {
			s.canvas.SetNodeSelected(id, true)
		}
	}
	for _, edgeID := range edgeIDs {
		s.canvas.SetEdgeSelected(edgeID, true)
	}
}

// ToggleExpanded flips a node's expanded state and shifts the nodes below
// it in the same column by the height delta. Collapsing reverses the
// recorded shift exactly instead of re-running full spacing. No history
// entry is recorded.
func (s *CanvasService) ToggleExpanded(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return false
	}
	node := s.canvas.GetNode(id)
	if node == nil {
		return false
	}

	previousHeight := s.layout.NodeHeight(node)
	expanded, _ := s.canvas.ToggleExpanded(id)
	delta := s.layout.NodeHeight(node) - previousHeight

	if expanded {
		s.layout.ApplyExpandShift(s.canvas, id, delta)
	} else if !s.layout.ReverseExpandShift(s.canvas, id) {
		// No recorded shift (state loaded collapsed-from-expanded);
		// fall back to shifting by the negative delta.
		s.layout.ApplyExpandShift(s.canvas, id, delta)
	}
	return true
}

// ToggleCompleted flips a node's completed flag. Unknown ids are a no-op.
func (s *CanvasService) ToggleCompleted(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return false
	}
	_, ok := s.canvas.ToggleCompleted(id)
	return ok
}

// Undo restores the most recent past snapshot. A no-op when the past
// stack is empty.
func (s *CanvasService) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := s.history.Undo(s.canvas.TakeSnapshot())
	if restored == nil {
		return false
	}
	s.canvas.RestoreSnapshot(restored)
	return true
}

// Redo restores the most recent future snapshot. A no-op when the future
// stack is empty.
func (s *CanvasService) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := s.history.Redo(s.canvas.TakeSnapshot())
	if restored == nil {
		return false
	}
	s.canvas.RestoreSnapshot(restored)
	return true
}

// CanUndo reports whether an undo is available.
func (s *CanvasService) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (s *CanvasService) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// ReplaceAll swaps the whole graph. The incoming layout becomes the new
// reset baseline, and stacked nodes are spaced apart.
func (s *CanvasService) ReplaceAll(nodes []*entities.Node, edges []*entities.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	if err := s.canvas.ReplaceAll(nodes, edges); err != nil {
		return err
	}

	s.layout.Reset()
	s.layout.AutoSpaceColumns(s.canvas)
	s.layout.CaptureBaseline(s.canvas)
	s.history.Push(snapshot)
	s.drainEvents()
	return nil
}

// AppendAll adds nodes and edges to the existing graph and re-spaces
// columns.
func (s *CanvasService) AppendAll(nodes []*entities.Node, edges []*entities.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	if err := s.canvas.AppendAll(nodes, edges); err != nil {
		return err
	}

	s.layout.AutoSpaceColumns(s.canvas)
	s.history.Push(snapshot)
	s.drainEvents()
	return nil
}

// SmartImport applies an already-reconciled import as one undoable action:
// non-destructive field updates for matched nodes, then new nodes and
// edges appended and spaced.
func (s *CanvasService) SmartImport(
	updates []*domainservices.NodeFieldUpdate,
	newNodes []*entities.Node,
	newEdges []*entities.Edge,
) (ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	summary := ImportSummary{}

	for _, update := range updates {
		if update == nil || len(update.FieldsToFill) == 0 {
			summary.NodesSkipped++
			continue
		}
		if s.canvas.UpdateNodeFields(update.NodeID, update.FieldsToFill) {
			summary.NodesUpdated++
		} else {
			summary.NodesSkipped++
		}
	}

	if err := s.canvas.AppendAll(newNodes, newEdges); err != nil {
		s.canvas.RestoreSnapshot(snapshot)
		return ImportSummary{}, err
	}
	summary.NodesAdded = len(newNodes)
	summary.EdgesAdded = len(newEdges)

	s.layout.AutoSpaceColumns(s.canvas)
	s.canvas.RecordEvent(events.NewCanvasImported(
		s.canvas.ID().String(),
		summary.NodesUpdated,
		summary.NodesAdded,
		summary.EdgesAdded,
	))
	s.history.Push(snapshot)
	s.drainEvents()
	return summary, nil
}

// MatchImport reconciles extracted items against the live graph without
// mutating anything.
func (s *CanvasService) MatchImport(extracted []domainservices.ExtractedItem) domainservices.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matcher.MatchExtractedToExisting(extracted, s.existingSummaries())
}

// PlanFieldUpdates turns accepted matches plus extracted field data into
// non-destructive updates, dropping matches with nothing to fill.
func (s *CanvasService) PlanFieldUpdates(
	matches []domainservices.NodeMatch,
	extractedData map[string]map[string]string,
) []*domainservices.NodeFieldUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updates []*domainservices.NodeFieldUpdate
	for _, match := range matches {
		node := s.canvas.GetNode(match.ExistingNodeID)
		if node == nil {
			continue
		}
		update := s.merger.BuildFieldUpdate(
			node.ID(),
			node.Type(),
			node.PopulatedFields(),
			extractedData[match.ExtractedName],
		)
		if update != nil {
			updates = append(updates, update)
		}
	}
	return updates
}

// ResetLayout restores the saved baseline layout, or realigns all nodes
// into per-type columns when none exists. Recorded as one history entry.
func (s *CanvasService) ResetLayout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	s.layout.Realign(s.canvas)
	s.history.Push(snapshot)
}

// SetMeasuredHeight feeds a renderer-measured pixel height into the layout
// engine's override map.
func (s *CanvasService) SetMeasuredHeight(nodeID string, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return
	}
	s.layout.SetMeasuredHeight(id, height)
}

// Nodes returns the live nodes in insertion order.
func (s *CanvasService) Nodes() []*entities.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Nodes()
}

// Edges returns the live edges in insertion order.
func (s *CanvasService) Edges() []*entities.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Edges()
}

// Snapshot returns a deep copy of the full graph state for the
// persistence collaborator.
func (s *CanvasService) Snapshot() *aggregates.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.TakeSnapshot()
}

// ExistingNodeSummaries derives the import-time view of the live graph for
// the extraction collaborator.
func (s *CanvasService) ExistingNodeSummaries() []domainservices.ExistingNodeSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existingSummaries()
}

// LoadState replaces the graph with persisted state without recording
// history: loading a project starts with clean undo/redo stacks and the
// persisted layout as baseline.
func (s *CanvasService) LoadState(nodes []*entities.Node, edges []*entities.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canvas.ReplaceAll(nodes, edges); err != nil {
		return err
	}
	s.canvas.MarkEventsAsCommitted()
	s.history.Clear()
	s.layout.Reset()
	s.layout.CaptureBaseline(s.canvas)
	return nil
}

// existingSummaries must be called with the lock held.
func (s *CanvasService) existingSummaries() []domainservices.ExistingNodeSummary {
	nodes := s.canvas.Nodes()
	summaries := make([]domainservices.ExistingNodeSummary, 0, len(nodes))
	for _, node := range nodes {
		summaries = append(summaries, domainservices.ExistingNodeSummary{
			ID:              node.ID(),
			Type:            node.Type(),
			Name:            node.Name(),
			PopulatedFields: node.PopulatedFields(),
		})
	}
	return summaries
}

// drainEvents must be called with the lock held.
func (s *CanvasService) drainEvents() {
	for _, event := range s.canvas.GetUncommittedEvents() {
		s.logger.Debug("domain event",
			zap.String("type", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
		)
	}
	s.canvas.MarkEventsAsCommitted()
}
