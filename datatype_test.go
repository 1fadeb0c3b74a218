package h5json_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdpserv/h5json"
)

func intType(base string) map[string]any {
	return map[string]any{"class": "H5T_INTEGER", "base": base}
}

func strType() map[string]any {
	return map[string]any{
		"class":   "H5T_STRING",
		"charSet": "H5T_CSET_ASCII",
		"strPad":  "H5T_STR_NULLTERM",
		"length":  "H5T_VARIABLE",
	}
}

func firstIssue(t *testing.T, err error) h5json.Issue {
	t.Helper()
	require.Error(t, err)
	iss, ok := h5json.AsIssues(err)
	require.True(t, ok, "error should carry issues: %v", err)
	require.NotEmpty(t, iss)
	return iss[0]
}

func TestValidateDatatype_PredefinedEnumeration(t *testing.T) {
	bases := []string{"H5T_STD_I8", "H5T_STD_U8", "H5T_STD_I16", "H5T_STD_U16",
		"H5T_STD_I32", "H5T_STD_U32", "H5T_STD_I64", "H5T_STD_U64"}
	for _, b := range bases {
		for _, endian := range []string{"LE", "BE"} {
			require.NoError(t, h5json.ValidateDatatype(intType(b+endian)), b+endian)
		}
	}
	for _, b := range []string{"H5T_IEEE_F32LE", "H5T_IEEE_F64BE"} {
		require.NoError(t, h5json.ValidateDatatype(map[string]any{"class": "H5T_FLOAT", "base": b}))
	}
}

func TestValidateDatatype_UnknownBase(t *testing.T) {
	for _, b := range []string{"H5T_STD_I128LE", "H5T_IEEE_F16LE", "H5T_STD_I32", "H5T_STD_I32XX", "bogus", ""} {
		is := firstIssue(t, h5json.ValidateDatatype(intType(b)))
		assert.Equal(t, h5json.CodeUnknownBaseType, is.Code, b)
		assert.Equal(t, "/base", is.Path, b)
	}
}

func TestValidateDatatype_MissingClassAndBase(t *testing.T) {
	is := firstIssue(t, h5json.ValidateDatatype(map[string]any{"base": "H5T_STD_I32LE"}))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)
	assert.Equal(t, "/class", is.Path)

	is = firstIssue(t, h5json.ValidateDatatype(map[string]any{"class": "H5T_INTEGER"}))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)
	assert.Equal(t, "/base", is.Path)
}

func TestValidateDatatype_UnsupportedClass(t *testing.T) {
	is := firstIssue(t, h5json.ValidateDatatype(map[string]any{"class": "H5T_OPAQUE"}))
	assert.Equal(t, h5json.CodeUnsupportedDatatype, is.Code)
}

func TestValidateDatatype_String(t *testing.T) {
	require.NoError(t, h5json.ValidateDatatype(strType()))

	fixed := strType()
	fixed["length"] = 16
	require.NoError(t, h5json.ValidateDatatype(fixed))

	bad := strType()
	bad["charSet"] = "H5T_CSET_LATIN1"
	is := firstIssue(t, h5json.ValidateDatatype(bad))
	assert.Equal(t, h5json.CodeInvalidStringEncoding, is.Code)

	bad = strType()
	bad["strPad"] = "H5T_STR_TABPAD"
	is = firstIssue(t, h5json.ValidateDatatype(bad))
	assert.Equal(t, h5json.CodeInvalidStringEncoding, is.Code)

	bad = strType()
	bad["length"] = 0
	is = firstIssue(t, h5json.ValidateDatatype(bad))
	assert.Equal(t, h5json.CodeInvalidStringEncoding, is.Code)

	bad = strType()
	delete(bad, "strPad")
	is = firstIssue(t, h5json.ValidateDatatype(bad))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)
	assert.Equal(t, "/strPad", is.Path)
}

func TestValidateDatatype_Reference(t *testing.T) {
	for _, b := range []string{"H5T_STD_REF_OBJ", "H5T_STD_REF_DSETREG"} {
		require.NoError(t, h5json.ValidateDatatype(map[string]any{"class": "H5T_REFERENCE", "base": b}))
	}
	is := firstIssue(t, h5json.ValidateDatatype(map[string]any{"class": "H5T_REFERENCE", "base": "H5T_STD_REF_ATTR"}))
	assert.Equal(t, h5json.CodeUnknownBaseType, is.Code)
}

// Concrete scenario C: two compound members named "x".
func TestValidateDatatype_CompoundDuplicateField(t *testing.T) {
	dt := map[string]any{
		"class": "H5T_COMPOUND",
		"fields": []any{
			map[string]any{"name": "x", "type": intType("H5T_STD_I32LE")},
			map[string]any{"name": "x", "type": intType("H5T_STD_I16LE")},
		},
	}
	is := firstIssue(t, h5json.ValidateDatatype(dt))
	assert.Equal(t, h5json.CodeDuplicateFieldName, is.Code)
	assert.Equal(t, "/fields/1/name", is.Path)
}

func TestValidateDatatype_CompoundRules(t *testing.T) {
	ok := map[string]any{
		"class": "H5T_COMPOUND",
		"fields": []any{
			map[string]any{"name": "x", "type": intType("H5T_STD_I32LE")},
			map[string]any{"name": "X", "type": strType()}, // case differs, unique
		},
	}
	require.NoError(t, h5json.ValidateDatatype(ok))

	empty := map[string]any{"class": "H5T_COMPOUND", "fields": []any{}}
	is := firstIssue(t, h5json.ValidateDatatype(empty))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)

	unnamed := map[string]any{
		"class":  "H5T_COMPOUND",
		"fields": []any{map[string]any{"name": "", "type": intType("H5T_STD_I8LE")}},
	}
	is = firstIssue(t, h5json.ValidateDatatype(unnamed))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)

	// Invalid nested member types surface from the recursive walk.
	nestedBad := map[string]any{
		"class":  "H5T_COMPOUND",
		"fields": []any{map[string]any{"name": "n", "type": intType("nope")}},
	}
	is = firstIssue(t, h5json.ValidateDatatype(nestedBad))
	assert.Equal(t, h5json.CodeUnknownBaseType, is.Code)
	assert.Equal(t, "/fields/0/type/base", is.Path)
}

func TestValidateDatatype_VlenAndArray(t *testing.T) {
	vlen := map[string]any{"class": "H5T_VLEN", "base": intType("H5T_STD_U16BE")}
	require.NoError(t, h5json.ValidateDatatype(vlen))

	arr := map[string]any{"class": "H5T_ARRAY", "dims": []any{2, 3}, "base": strType()}
	require.NoError(t, h5json.ValidateDatatype(arr))

	noDims := map[string]any{"class": "H5T_ARRAY", "base": strType()}
	is := firstIssue(t, h5json.ValidateDatatype(noDims))
	assert.Equal(t, h5json.CodeMissingRequiredField, is.Code)

	empty := map[string]any{"class": "H5T_ARRAY", "dims": []any{}, "base": strType()}
	is = firstIssue(t, h5json.ValidateDatatype(empty))
	assert.Equal(t, h5json.CodeInvalidRank, is.Code)

	wide := make([]any, 33)
	for i := range wide {
		wide[i] = 2
	}
	tooWide := map[string]any{"class": "H5T_ARRAY", "dims": wide, "base": strType()}
	is = firstIssue(t, h5json.ValidateDatatype(tooWide))
	assert.Equal(t, h5json.CodeInvalidRank, is.Code)

	zeroDim := map[string]any{"class": "H5T_ARRAY", "dims": []any{2, 0}, "base": strType()}
	is = firstIssue(t, h5json.ValidateDatatype(zeroDim))
	assert.Equal(t, h5json.CodeDimensionOutOfRange, is.Code)
	assert.Equal(t, "/dims/1", is.Path)
}

func TestValidateDatatype_NestingCeiling(t *testing.T) {
	dt := any(intType("H5T_STD_I8LE"))
	for i := 0; i < 80; i++ {
		dt = map[string]any{"class": "H5T_VLEN", "base": dt}
	}
	is := firstIssue(t, h5json.ValidateDatatype(dt))
	assert.Equal(t, h5json.CodeNestingTooDeep, is.Code)
}

func TestParseDatatype_TypedVariant(t *testing.T) {
	dt, err := h5json.ParseDatatype(map[string]any{
		"class": "H5T_ARRAY",
		"dims":  []any{4, 2},
		"base":  strType(),
	}, h5json.Root())
	require.NoError(t, err)
	require.Equal(t, h5json.ClassArray, dt.Class)
	assert.Equal(t, []uint64{4, 2}, dt.Dims)
	require.NotNil(t, dt.Item)
	assert.Equal(t, h5json.ClassString, dt.Item.Class)
	assert.True(t, dt.Item.Length.Variable)
}

func TestCommonName(t *testing.T) {
	for base, want := range map[string]string{
		"H5T_STD_I32LE":  "int32",
		"H5T_STD_U64BE":  "uint64",
		"H5T_IEEE_F64LE": "float64",
	} {
		dt, err := h5json.ParseDatatype(map[string]any{"class": classFor(base), "base": base}, h5json.Root())
		require.NoError(t, err)
		got, ok := h5json.CommonName(dt)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	dt, err := h5json.ParseDatatype(strType(), h5json.Root())
	require.NoError(t, err)
	got, ok := h5json.CommonName(dt)
	require.True(t, ok)
	assert.Equal(t, "string", got)
}

func classFor(base string) string {
	if base[:8] == "H5T_IEEE" {
		return "H5T_FLOAT"
	}
	return "H5T_INTEGER"
}

func TestItemSize(t *testing.T) {
	for base, want := range map[string]int{
		"H5T_STD_I8LE":   1,
		"H5T_STD_U16BE":  2,
		"H5T_IEEE_F32LE": 4,
		"H5T_IEEE_F64BE": 8,
	} {
		got, ok := h5json.ItemSize(base)
		require.True(t, ok, base)
		assert.Equal(t, want, got, base)
	}
	_, ok := h5json.ItemSize(fmt.Sprintf("H5T_STD_I%dLE", 128))
	assert.False(t, ok)
}
