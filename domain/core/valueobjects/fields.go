package valueobjects

import "sort"

// FieldSet is a value object holding the textual data fields of a node
// (name, summary, description, ...). Operations return new sets; the
// receiver is never mutated, so snapshots can share nothing with live state.
type FieldSet struct {
	values map[string]string
}

// NewFieldSet creates a FieldSet from the given values.
func NewFieldSet(values map[string]string) FieldSet {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return FieldSet{values: copied}
}

// EmptyFieldSet creates a FieldSet with no values.
func EmptyFieldSet() FieldSet {
	return FieldSet{values: map[string]string{}}
}

// Get returns the value of a field, or "" when unset.
func (f FieldSet) Get(key string) string {
	return f.values[key]
}

// Has reports whether the field holds a non-empty value.
func (f FieldSet) Has(key string) bool {
	return f.values[key] != ""
}

// Merge returns a new FieldSet with the partial values shallow-merged in.
func (f FieldSet) Merge(partial map[string]string) FieldSet {
	merged := make(map[string]string, len(f.values)+len(partial))
	for k, v := range f.values {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return FieldSet{values: merged}
}

// PopulatedKeys returns the keys holding non-empty values, sorted for
// deterministic output.
func (f FieldSet) PopulatedKeys() []string {
	keys := make([]string, 0, len(f.values))
	for k, v := range f.values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of all field values.
func (f FieldSet) Values() map[string]string {
	copied := make(map[string]string, len(f.values))
	for k, v := range f.values {
		copied[k] = v
	}
	return copied
}

// Equals checks if two field sets hold the same values.
func (f FieldSet) Equals(other FieldSet) bool {
	if len(f.values) != len(other.values) {
		return false
	}
	for k, v := range f.values {
		if other.values[k] != v {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no field holds a non-empty value.
func (f FieldSet) IsEmpty() bool {
	for _, v := range f.values {
		if v != "" {
			return false
		}
	}
	return true
}
