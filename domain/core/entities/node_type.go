package entities

// NodeType identifies the kind of planning artifact a node represents.
type NodeType string

const (
	NodeTypeIdea      NodeType = "idea"
	NodeTypeFeature   NodeType = "feature"
	NodeTypeScreen    NodeType = "screen"
	NodeTypeTechStack NodeType = "techStack"
	NodeTypePrompt    NodeType = "prompt"
	NodeTypeNote      NodeType = "note"
)

// CanonicalTypeOrder is the order types are laid out in when the canvas is
// realigned into per-type columns.
var CanonicalTypeOrder = []NodeType{
	NodeTypeIdea,
	NodeTypeFeature,
	NodeTypeScreen,
	NodeTypeTechStack,
	NodeTypePrompt,
	NodeTypeNote,
}

// defaultFieldKeys lists the data fields each node type carries. Every type
// has a "name"; the rest are type-specific.
var defaultFieldKeys = map[NodeType][]string{
	NodeTypeIdea:      {"name", "summary", "problem", "targetAudience"},
	NodeTypeFeature:   {"name", "description", "priority", "complexity"},
	NodeTypeScreen:    {"name", "description", "screenType"},
	NodeTypeTechStack: {"name", "category", "description"},
	NodeTypePrompt:    {"name", "content"},
	NodeTypeNote:      {"name", "content"},
}

// IsValidNodeType reports whether t names a known node type.
func IsValidNodeType(t NodeType) bool {
	_, ok := defaultFieldKeys[t]
	return ok
}

// DefaultFields returns the empty default data record for a node type.
func DefaultFields(t NodeType) map[string]string {
	fields := make(map[string]string, len(defaultFieldKeys[t]))
	for _, key := range defaultFieldKeys[t] {
		fields[key] = ""
	}
	return fields
}

// FieldKeys returns the canonical data field keys of a node type.
func FieldKeys(t NodeType) []string {
	keys := make([]string, len(defaultFieldKeys[t]))
	copy(keys, defaultFieldKeys[t])
	return keys
}
