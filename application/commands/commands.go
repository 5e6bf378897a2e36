package commands

import (
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
	domainservices "blueprint-backend/domain/services"
)

// AddNodeCommand places a new node on the canvas.
type AddNodeCommand struct {
	Type string  `json:"type" validate:"required,oneof=idea feature screen techStack prompt note"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// UpdateNodeDataCommand shallow-merges a partial data record into one node.
type UpdateNodeDataCommand struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

// MoveNodeCommand records a completed drag.
type MoveNodeCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConnectCommand creates an edge between two nodes.
type ConnectCommand struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// SelectionCommand replaces the current selection.
type SelectionCommand struct {
	NodeIDs []string `json:"node_ids"`
	EdgeIDs []string `json:"edge_ids"`
}

// SetHeightCommand feeds a renderer-measured node height back into the
// layout engine.
type SetHeightCommand struct {
	Height float64 `json:"height" validate:"required,gt=0"`
}

// NodeSpec is the wire representation of a node in replace/append/import
// payloads.
type NodeSpec struct {
	ID        string            `json:"id" validate:"required"`
	Type      string            `json:"type" validate:"required,oneof=idea feature screen techStack prompt note"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Fields    map[string]string `json:"fields"`
	Expanded  bool              `json:"expanded"`
	Completed bool              `json:"completed"`
	ZIndex    int               `json:"z_index"`
}

// EdgeSpec is the wire representation of an edge.
type EdgeSpec struct {
	ID       string `json:"id" validate:"required"`
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// ReplaceGraphCommand swaps or extends the whole graph.
type ReplaceGraphCommand struct {
	Nodes []NodeSpec `json:"nodes" validate:"dive"`
	Edges []EdgeSpec `json:"edges" validate:"dive"`
}

// MatchImportCommand reconciles extracted items against the live graph.
type MatchImportCommand struct {
	Items []domainservices.ExtractedItem `json:"items" validate:"required,min=1,dive"`
}

// FieldUpdateSpec is one non-destructive node update in an import payload.
type FieldUpdateSpec struct {
	NodeID string            `json:"node_id" validate:"required"`
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

// SmartImportCommand applies an already-reconciled import: field updates
// for matched nodes plus brand new nodes and edges.
type SmartImportCommand struct {
	Updates  []FieldUpdateSpec `json:"updates" validate:"dive"`
	NewNodes []NodeSpec        `json:"new_nodes" validate:"dive"`
	NewEdges []EdgeSpec        `json:"new_edges" validate:"dive"`
}

// ToEntity converts a NodeSpec to a node entity.
func (s NodeSpec) ToEntity() (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(s.ID)
	if err != nil {
		return nil, err
	}
	pos, err := valueobjects.NewPosition(s.X, s.Y)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructNode(
		id,
		entities.NodeType(s.Type),
		pos,
		s.Fields,
		s.Expanded,
		s.Completed,
		s.ZIndex,
		false,
	)
}

// ToEntity converts an EdgeSpec to an edge entity.
func (s EdgeSpec) ToEntity() (*entities.Edge, error) {
	sourceID, err := valueobjects.NewNodeIDFromString(s.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := valueobjects.NewNodeIDFromString(s.TargetID)
	if err != nil {
		return nil, err
	}
	return &entities.Edge{ID: s.ID, SourceID: sourceID, TargetID: targetID}, nil
}

// NodeSpecsToEntities converts a slice of specs, failing on the first
// invalid one.
func NodeSpecsToEntities(specs []NodeSpec) ([]*entities.Node, error) {
	nodes := make([]*entities.Node, 0, len(specs))
	for _, spec := range specs {
		node, err := spec.ToEntity()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// EdgeSpecsToEntities converts a slice of specs, failing on the first
// invalid one.
func EdgeSpecsToEntities(specs []EdgeSpec) ([]*entities.Edge, error) {
	edges := make([]*entities.Edge, 0, len(specs))
	for _, spec := range specs {
		edge, err := spec.ToEntity()
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
