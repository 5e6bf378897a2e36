package entities

import (
	"blueprint-backend/domain/core/valueobjects"
	pkgerrors "blueprint-backend/pkg/errors"
)

// Node is the main entity representing a planning artifact on the canvas.
// This is a rich domain model with encapsulated state; mutation goes through
// methods so the aggregate can keep its invariants.
type Node struct {
	id        valueobjects.NodeID
	nodeType  NodeType
	position  valueobjects.Position
	fields    valueobjects.FieldSet
	expanded  bool
	completed bool
	zIndex    int
	selected  bool
}

// NewNode creates a new node of the given type at the given position with
// the type's default data record.
func NewNode(nodeType NodeType, position valueobjects.Position) (*Node, error) {
	if !IsValidNodeType(nodeType) {
		return nil, pkgerrors.NewValidationError("unknown node type: " + string(nodeType))
	}

	return &Node{
		id:       valueobjects.NewNodeID(string(nodeType)),
		nodeType: nodeType,
		position: position,
		fields:   valueobjects.NewFieldSet(DefaultFields(nodeType)),
	}, nil
}

// ReconstructNode recreates a node from stored data with its identity and
// flags preserved.
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType NodeType,
	position valueobjects.Position,
	fields map[string]string,
	expanded, completed bool,
	zIndex int,
	selected bool,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if !IsValidNodeType(nodeType) {
		return nil, pkgerrors.NewValidationError("unknown node type: " + string(nodeType))
	}

	return &Node{
		id:        id,
		nodeType:  nodeType,
		position:  position,
		fields:    valueobjects.NewFieldSet(fields),
		expanded:  expanded,
		completed: completed,
		zIndex:    zIndex,
		selected:  selected,
	}, nil
}

// ID returns the node's unique identifier.
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's type.
func (n *Node) Type() NodeType {
	return n.nodeType
}

// Position returns the node's position.
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Fields returns the node's data fields.
func (n *Node) Fields() valueobjects.FieldSet {
	return n.fields
}

// Name returns the node's display name.
func (n *Node) Name() string {
	return n.fields.Get("name")
}

// Expanded reports whether the node is rendered expanded.
func (n *Node) Expanded() bool {
	return n.expanded
}

// Completed reports whether the node is marked done.
func (n *Node) Completed() bool {
	return n.completed
}

// ZIndex returns the node's stacking order.
func (n *Node) ZIndex() int {
	return n.zIndex
}

// Selected reports whether the node is currently selected.
func (n *Node) Selected() bool {
	return n.selected
}

// MoveTo moves the node to a new position.
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// MergeFields shallow-merges the partial data record into the node's fields.
// Sibling nodes are structurally untouched; the field set is replaced, never
// mutated in place.
func (n *Node) MergeFields(partial map[string]string) {
	n.fields = n.fields.Merge(partial)
}

// PopulatedFields returns the data keys that already hold non-empty values.
func (n *Node) PopulatedFields() []string {
	return n.fields.PopulatedKeys()
}

// ToggleExpanded flips the expanded flag and returns the new state.
func (n *Node) ToggleExpanded() bool {
	n.expanded = !n.expanded
	return n.expanded
}

// ToggleCompleted flips the completed flag and returns the new state.
func (n *Node) ToggleCompleted() bool {
	n.completed = !n.completed
	return n.completed
}

// SetSelected sets the node's selection state.
func (n *Node) SetSelected(selected bool) {
	n.selected = selected
}

// SetZIndex sets the node's stacking order.
func (n *Node) SetZIndex(z int) {
	n.zIndex = z
}

// Clone returns a deep, alias-free copy of the node. History snapshots rely
// on this: later mutation of the live node cannot reach the copy.
func (n *Node) Clone() *Node {
	return &Node{
		id:        n.id,
		nodeType:  n.nodeType,
		position:  n.position,
		fields:    valueobjects.NewFieldSet(n.fields.Values()),
		expanded:  n.expanded,
		completed: n.completed,
		zIndex:    n.zIndex,
		selected:  n.selected,
	}
}
