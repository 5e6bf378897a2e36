package valueobjects

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeID_NewNodeID(t *testing.T) {
	id := NewNodeID("feature")

	assert.True(t, strings.HasPrefix(id.String(), "feature-"))
	assert.Equal(t, "feature", id.TypePrefix())
	assert.False(t, id.IsZero())

	other := NewNodeID("feature")
	assert.False(t, id.Equals(other), "two generated ids must differ")
}

func TestNodeID_FromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		prefix  string
	}{
		{name: "valid typed id", input: "screen-abc123", prefix: "screen"},
		{name: "id without prefix", input: "abc123", prefix: ""},
		{name: "empty id", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewNodeIDFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
			assert.Equal(t, tt.prefix, id.TypePrefix())
		})
	}
}

func TestNodeID_JSONRoundTrip(t *testing.T) {
	id := NewNodeID("note")

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestPosition_Validation(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		wantErr bool
	}{
		{name: "origin", x: 0, y: 0},
		{name: "negative coordinates", x: -120.5, y: -30},
		{name: "NaN x", x: math.NaN(), y: 0, wantErr: true},
		{name: "infinite y", x: 0, y: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := NewPosition(tt.x, tt.y)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, pos.X())
			assert.Equal(t, tt.y, pos.Y())
		})
	}
}

func TestPosition_DistanceAndTranslate(t *testing.T) {
	a, err := NewPosition(0, 0)
	require.NoError(t, err)
	b, err := NewPosition(3, 4)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9)
	assert.InDelta(t, 5.0, b.DistanceTo(a), 1e-9)

	moved, err := a.Translate(3, 4)
	require.NoError(t, err)
	assert.True(t, moved.Equals(b))
}

func TestFieldSet_MergeDoesNotMutateReceiver(t *testing.T) {
	original := NewFieldSet(map[string]string{"name": "Login", "summary": ""})

	merged := original.Merge(map[string]string{"summary": "Auth flow", "extra": "x"})

	assert.Equal(t, "Login", original.Get("name"))
	assert.Equal(t, "", original.Get("summary"), "receiver must stay untouched")
	assert.Equal(t, "Auth flow", merged.Get("summary"))
	assert.Equal(t, "x", merged.Get("extra"))
}

func TestFieldSet_PopulatedKeys(t *testing.T) {
	fields := NewFieldSet(map[string]string{
		"name":    "Dashboard",
		"summary": "",
		"problem": "too many tabs",
	})

	assert.Equal(t, []string{"name", "problem"}, fields.PopulatedKeys())
	assert.True(t, fields.Has("name"))
	assert.False(t, fields.Has("summary"))
	assert.False(t, fields.IsEmpty())
	assert.True(t, EmptyFieldSet().IsEmpty())
}

func TestFieldSet_ValuesReturnsCopy(t *testing.T) {
	fields := NewFieldSet(map[string]string{"name": "A"})

	values := fields.Values()
	values["name"] = "B"

	assert.Equal(t, "A", fields.Get("name"))
}
