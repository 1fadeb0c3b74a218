package h5json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdpserv/h5json"
)

func TestValidateDataspace_NullAndScalar(t *testing.T) {
	require.NoError(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_NULL"}))
	require.NoError(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SCALAR"}))

	is := firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SCALAR", "dims": []any{1}}))
	assert.Equal(t, h5json.CodeUnexpectedDimensions, is.Code)
	assert.Equal(t, "/dims", is.Path)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_NULL", "maxdims": []any{1}}))
	assert.Equal(t, h5json.CodeUnexpectedDimensions, is.Code)
	assert.Equal(t, "/maxdims", is.Path)
}

func TestValidateDataspace_UnknownClass(t *testing.T) {
	is := firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_COMPLEX"}))
	assert.Equal(t, h5json.CodeInvalidDataspaceClass, is.Code)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{"dims": []any{1}}))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)
	assert.Equal(t, "/class", is.Path)

	is = firstIssue(t, h5json.ValidateDataspace([]any{}))
	assert.Equal(t, h5json.CodeInvalidDataspaceClass, is.Code)
}

func TestParseDataspace_Simple(t *testing.T) {
	ds, err := h5json.ParseDataspace(map[string]any{
		"class": "H5S_SIMPLE",
		"dims":  []any{2, 3},
	}, h5json.Root())
	require.NoError(t, err)
	assert.Equal(t, h5json.SpaceSimple, ds.Class)
	assert.Equal(t, []uint64{2, 3}, ds.Dims)
	assert.Equal(t, 2, ds.Rank())
	// Absent maxdims resolves to dims.
	assert.False(t, ds.Explicit)
	require.Len(t, ds.MaxDims, 2)
	assert.Equal(t, h5json.MaxDim{N: 2}, ds.MaxDims[0])
	assert.Equal(t, h5json.MaxDim{N: 3}, ds.MaxDims[1])
}

func TestParseDataspace_MaxdimsAndUnlimited(t *testing.T) {
	ds, err := h5json.ParseDataspace(map[string]any{
		"class":   "H5S_SIMPLE",
		"dims":    []any{2, 3},
		"maxdims": []any{4, "H5S_UNLIMITED"},
	}, h5json.Root())
	require.NoError(t, err)
	assert.True(t, ds.Explicit)
	assert.Equal(t, h5json.MaxDim{N: 4}, ds.MaxDims[0])
	assert.True(t, ds.MaxDims[1].Unlimited)
}

func TestParseDataspace_SimpleErrors(t *testing.T) {
	is := firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SIMPLE"}))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)
	assert.Equal(t, "/dims", is.Path)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SIMPLE", "dims": []any{}}))
	assert.Equal(t, h5json.CodeInvalidRank, is.Code)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SIMPLE", "dims": []any{2.5}}))
	assert.Equal(t, h5json.CodeDimensionOutOfRange, is.Code)
	assert.Equal(t, "/dims/0", is.Path)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SIMPLE", "dims": []any{-1}}))
	assert.Equal(t, h5json.CodeDimensionOutOfRange, is.Code)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{
		"class": "H5S_SIMPLE", "dims": []any{2, 3}, "maxdims": []any{4},
	}))
	assert.Equal(t, h5json.CodeInvalidRank, is.Code)
	assert.Equal(t, "/maxdims", is.Path)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{
		"class": "H5S_SIMPLE", "dims": []any{2}, "maxdims": []any{"H5S_INFINITE"},
	}))
	assert.Equal(t, h5json.CodeDimensionOutOfRange, is.Code)

	is = firstIssue(t, h5json.ValidateDataspace(map[string]any{
		"class": "H5S_SIMPLE", "dims": []any{2}, "maxdims": []any{0},
	}))
	assert.Equal(t, h5json.CodeDimensionOutOfRange, is.Code)
}

func TestParseDataspace_DimsExceedMaxdims(t *testing.T) {
	is := firstIssue(t, h5json.ValidateDataspace(map[string]any{
		"class":   "H5S_SIMPLE",
		"dims":    []any{5, 3},
		"maxdims": []any{4, 3},
	}))
	assert.Equal(t, h5json.CodeDimsExceedMaxdims, is.Code)
	assert.Equal(t, "/maxdims/0", is.Path)
}

func TestParseDataspace_RankCeiling(t *testing.T) {
	wide := make([]any, 33)
	for i := range wide {
		wide[i] = 1
	}
	is := firstIssue(t, h5json.ValidateDataspace(map[string]any{"class": "H5S_SIMPLE", "dims": wide}))
	assert.Equal(t, h5json.CodeInvalidRank, is.Code)
}

func TestParseDataspace_ZeroDimAllowed(t *testing.T) {
	// A zero-sized axis is a legal simple dataspace (an empty extendable
	// dataset starts this way).
	ds, err := h5json.ParseDataspace(map[string]any{
		"class":   "H5S_SIMPLE",
		"dims":    []any{0},
		"maxdims": []any{"H5S_UNLIMITED"},
	}, h5json.Root())
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, ds.Dims)
}
