package services

import (
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

// NodeFieldUpdate is a non-destructive data update for an existing node:
// only fields the node does not already populate are filled.
type NodeFieldUpdate struct {
	NodeID       valueobjects.NodeID `json:"node_id"`
	NodeType     entities.NodeType   `json:"node_type"`
	FieldsToFill map[string]string   `json:"fields_to_fill"`
}

// FieldMerger computes additive field updates for import merges. Import
// never overwrites user-entered content; it only fills gaps.
type FieldMerger struct{}

// NewFieldMerger creates a merger.
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// BuildFieldUpdate returns the update filling every extracted field that
// is non-empty and not already populated on the node, or nil when nothing
// qualifies (the caller then counts the node as matched with nothing to
// fill).
func (m *FieldMerger) BuildFieldUpdate(
	nodeID valueobjects.NodeID,
	nodeType entities.NodeType,
	populatedFields []string,
	extractedData map[string]string,
) *NodeFieldUpdate {
	populated := make(map[string]bool, len(populatedFields))
	for _, f := range populatedFields {
		populated[f] = true
	}

	fill := make(map[string]string)
	for key, value := range extractedData {
		if value == "" || populated[key] {
			continue
		}
		fill[key] = value
	}

	if len(fill) == 0 {
		return nil
	}
	return &NodeFieldUpdate{
		NodeID:       nodeID,
		NodeType:     nodeType,
		FieldsToFill: fill,
	}
}
