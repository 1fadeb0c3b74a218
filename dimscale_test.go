package h5json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hdpserv/h5json"
)

func TestIsDimensionScale(t *testing.T) {
	attrs := []any{
		map[string]any{
			"name": "REFERENCE_LIST",
			"type": map[string]any{"class": "H5T_COMPOUND"},
		},
		map[string]any{"name": "CLASS", "value": "DIMENSION_SCALE"},
	}
	assert.True(t, h5json.IsDimensionScale(attrs))

	// Both markers are required.
	assert.False(t, h5json.IsDimensionScale(attrs[:1]))
	assert.False(t, h5json.IsDimensionScale(attrs[1:]))
	assert.False(t, h5json.IsDimensionScale(nil))

	// A REFERENCE_LIST that is not compound-typed does not count.
	assert.False(t, h5json.IsDimensionScale([]any{
		map[string]any{"name": "REFERENCE_LIST", "type": map[string]any{"class": "H5T_STRING"}},
		map[string]any{"name": "CLASS", "value": "DIMENSION_SCALE"},
	}))
}

func TestHasDimensionList(t *testing.T) {
	assert.True(t, h5json.HasDimensionList([]any{
		map[string]any{"name": "DIMENSION_LIST", "type": map[string]any{"class": "H5T_VLEN"}},
	}))
	assert.False(t, h5json.HasDimensionList([]any{
		map[string]any{"name": "DIMENSION_LIST", "type": map[string]any{"class": "H5T_STRING"}},
	}))
	assert.False(t, h5json.HasDimensionList(nil))
}
