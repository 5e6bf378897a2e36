package config

// DomainConfig holds all configurable business rules and constraints for
// the canvas engine.
type DomainConfig struct {
	// History constraints
	HistoryCapacity int

	// Canvas geometry
	NodeWidth         float64 // effective width used for overlap tests
	CollapsedHeight   float64 // fallback height for a collapsed node
	ExpandedHeight    float64 // fallback height for an expanded node
	VerticalGap       float64 // minimum vertical gap between stacked nodes
	ColumnBucketWidth float64 // x-bucket width used to group nodes into columns
	ColumnSpacingX    float64 // horizontal spacing between type columns on realign

	// Overlap search
	GridStep float64 // candidate step size of the ring search
	MaxRings int     // bound of the outward ring search

	// Import matching
	SimilarityThreshold float64 // minimum confidence for a name match
	SubstringScore      float64 // score assigned to substring containment

	// Validation settings
	AllowSelfConnections bool
	AllowParallelEdges   bool
}

// DefaultDomainConfig returns the default domain configuration.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		HistoryCapacity: 20,

		NodeWidth:         280,
		CollapsedHeight:   80,
		ExpandedHeight:    240,
		VerticalGap:       40,
		ColumnBucketWidth: 320,
		ColumnSpacingX:    360,

		GridStep: 20,
		MaxRings: 40,

		SimilarityThreshold: 0.6,
		SubstringScore:      0.85,

		// The canvas tolerates any structurally well-formed edge.
		AllowSelfConnections: true,
		AllowParallelEdges:   true,
	}
}

// DevelopmentDomainConfig returns development-specific configuration.
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	// A wider search keeps dense test canvases overlap-free.
	cfg.MaxRings = 80
	return cfg
}

// LoadDomainConfig loads domain configuration based on environment.
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
