package entities

import (
	"github.com/google/uuid"

	"blueprint-backend/domain/core/valueobjects"
)

// Edge represents a directed link between two canvas nodes. It carries no
// data beyond its endpoints.
type Edge struct {
	ID       string
	SourceID valueobjects.NodeID
	TargetID valueobjects.NodeID
	Selected bool
}

// NewEdge creates an edge with a fresh unique id.
func NewEdge(sourceID, targetID valueobjects.NodeID) *Edge {
	return &Edge{
		ID:       "edge-" + uuid.New().String(),
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// Touches reports whether the edge has the given node as either endpoint.
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.SourceID.Equals(nodeID) || e.TargetID.Equals(nodeID)
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	clone := *e
	return &clone
}
