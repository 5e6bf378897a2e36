package events

import (
	"time"

	"blueprint-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Node events

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType string              `json:"node_type"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(canvasID string, nodeID valueobjects.NodeID, nodeType string) NodeAdded {
	return NodeAdded{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.node_added",
			Timestamp:   time.Now(),
		},
		NodeID:   nodeID,
		NodeType: nodeType,
	}
}

// NodeRemoved is raised when a node is deleted, after its incident edges
// have been cascaded away
type NodeRemoved struct {
	BaseEvent
	NodeID       valueobjects.NodeID `json:"node_id"`
	EdgesRemoved int                 `json:"edges_removed"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(canvasID string, nodeID valueobjects.NodeID, edgesRemoved int) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.node_removed",
			Timestamp:   time.Now(),
		},
		NodeID:       nodeID,
		EdgesRemoved: edgesRemoved,
	}
}

// Edge events

// NodesConnected is raised when an edge is created
type NodesConnected struct {
	BaseEvent
	EdgeID   string              `json:"edge_id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(canvasID, edgeID string, sourceID, targetID valueobjects.NodeID) NodesConnected {
	return NodesConnected{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.nodes_connected",
			Timestamp:   time.Now(),
		},
		EdgeID:   edgeID,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// EdgeRemoved is raised when an edge is deleted on its own
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(canvasID, edgeID string) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.edge_removed",
			Timestamp:   time.Now(),
		},
		EdgeID: edgeID,
	}
}

// Canvas events

// CanvasReplaced is raised when the whole graph is swapped out
type CanvasReplaced struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// NewCanvasReplaced creates a CanvasReplaced event
func NewCanvasReplaced(canvasID string, nodeCount, edgeCount int) CanvasReplaced {
	return CanvasReplaced{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.replaced",
			Timestamp:   time.Now(),
		},
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}

// CanvasImported is raised when a smart import merges extracted content
type CanvasImported struct {
	BaseEvent
	NodesUpdated int `json:"nodes_updated"`
	NodesAdded   int `json:"nodes_added"`
	EdgesAdded   int `json:"edges_added"`
}

// NewCanvasImported creates a CanvasImported event
func NewCanvasImported(canvasID string, nodesUpdated, nodesAdded, edgesAdded int) CanvasImported {
	return CanvasImported{
		BaseEvent: BaseEvent{
			AggregateID: canvasID,
			EventType:   "canvas.imported",
			Timestamp:   time.Now(),
		},
		NodesUpdated: nodesUpdated,
		NodesAdded:   nodesAdded,
		EdgesAdded:   edgesAdded,
	}
}
