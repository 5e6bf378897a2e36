package services

import (
	"sort"
	"strings"

	"blueprint-backend/domain/config"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

// ExtractedItem is a name/type pair produced by the document extraction
// collaborator. Type carries the extraction label, which is mapped onto a
// graph node type before matching.
type ExtractedItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ExistingNodeSummary is the import-time view of a live node: enough to
// match against and to decide which fields may safely be filled.
type ExistingNodeSummary struct {
	ID              valueobjects.NodeID `json:"id"`
	Type            entities.NodeType   `json:"type"`
	Name            string              `json:"name"`
	PopulatedFields []string            `json:"populated_fields"`
}

// NodeMatch pairs an extracted item with an existing node at a confidence
// in [0, 1].
type NodeMatch struct {
	ExtractedName  string              `json:"extracted_name"`
	ExistingNodeID valueobjects.NodeID `json:"existing_node_id"`
	Confidence     float64             `json:"confidence"`
}

// MatchResult is the outcome of reconciling extracted items against the
// live graph.
type MatchResult struct {
	Matches   []NodeMatch     `json:"matches"`
	Unmatched []ExtractedItem `json:"unmatched"`
}

// NameMatcher reconciles extracted item names with existing node names
// using normalized edit-distance similarity and greedy one-to-one
// assignment. All methods are pure; the matcher holds only configuration.
type NameMatcher struct {
	cfg *config.DomainConfig
}

// genericSuffixes is the closed set of type words stripped from names
// before comparison, so "Login Screen" and "Login" compare equal.
var genericSuffixes = map[string]bool{
	"screen": true, "screens": true,
	"page": true, "pages": true,
	"feature": true, "features": true,
	"view": true, "views": true,
	"component": true, "components": true,
	"module": true, "modules": true,
}

// extractionTypeLabels maps extraction-side type labels onto graph node
// types.
var extractionTypeLabels = map[string]entities.NodeType{
	"idea": entities.NodeTypeIdea, "ideas": entities.NodeTypeIdea,
	"projectidea": entities.NodeTypeIdea,
	"feature":     entities.NodeTypeFeature, "features": entities.NodeTypeFeature,
	"screen": entities.NodeTypeScreen, "screens": entities.NodeTypeScreen,
	"page": entities.NodeTypeScreen, "pages": entities.NodeTypeScreen,
	"techstack": entities.NodeTypeTechStack, "tech": entities.NodeTypeTechStack,
	"technology": entities.NodeTypeTechStack, "technologies": entities.NodeTypeTechStack,
	"prompt": entities.NodeTypePrompt, "prompts": entities.NodeTypePrompt,
	"note": entities.NodeTypeNote, "notes": entities.NodeTypeNote,
}

// NewNameMatcher creates a matcher using the domain configuration's
// similarity thresholds.
func NewNameMatcher(cfg *config.DomainConfig) *NameMatcher {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NameMatcher{cfg: cfg}
}

// Normalize lowercases a name, strips the generic type-suffix words as
// whole words, strips punctuation, and collapses whitespace.
func (m *NameMatcher) Normalize(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, word := range words {
		if genericSuffixes[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// Levenshtein computes the classic edit distance between two strings.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity scores two names in [0, 1]: 1 for equal normalized strings, 0
// when either normalizes to empty, the substring score when one contains
// the other, else 1 - distance/max(len).
func (m *NameMatcher) Similarity(a, b string) float64 {
	na := m.Normalize(a)
	nb := m.Normalize(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return m.cfg.SubstringScore
	}

	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(Levenshtein(na, nb))/float64(maxLen)
}

// MapExtractionType resolves an extraction-side type label to a graph node
// type.
func MapExtractionType(label string) (entities.NodeType, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, key)
	t, ok := extractionTypeLabels[key]
	return t, ok
}

// MatchExtractedToExisting builds every type-compatible candidate pair at
// or above the similarity threshold, then greedily assigns pairs in
// descending confidence, each extracted item and each existing node
// claimed at most once. The sort is stable over original candidate order,
// so identical inputs always yield identical results.
func (m *NameMatcher) MatchExtractedToExisting(
	extracted []ExtractedItem,
	existing []ExistingNodeSummary,
) MatchResult {
	type candidate struct {
		extractedIdx int
		existingIdx  int
		confidence   float64
	}

	var candidates []candidate
	for i, item := range extracted {
		itemType, ok := MapExtractionType(item.Type)
		if !ok {
			continue
		}
		for j, node := range existing {
			if node.Type != itemType {
				continue
			}
			conf := m.Similarity(item.Name, node.Name)
			if conf >= m.cfg.SimilarityThreshold {
				candidates = append(candidates, candidate{i, j, conf})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].confidence > candidates[b].confidence
	})

	usedExtracted := make(map[int]bool)
	usedExisting := make(map[int]bool)
	result := MatchResult{Matches: []NodeMatch{}, Unmatched: []ExtractedItem{}}

	for _, cand := range candidates {
		if usedExtracted[cand.extractedIdx] || usedExisting[cand.existingIdx] {
			continue
		}
		usedExtracted[cand.extractedIdx] = true
		usedExisting[cand.existingIdx] = true
		result.Matches = append(result.Matches, NodeMatch{
			ExtractedName:  extracted[cand.extractedIdx].Name,
			ExistingNodeID: existing[cand.existingIdx].ID,
			Confidence:     cand.confidence,
		})
	}

	for i, item := range extracted {
		if !usedExtracted[i] {
			result.Unmatched = append(result.Unmatched, item)
		}
	}
	return result
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
