package h5json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdpserv/h5json"
)

func TestParseRef(t *testing.T) {
	ref, isRef, err := h5json.ParseRef("datasets/abc-123")
	require.NoError(t, err)
	require.True(t, isRef)
	assert.Equal(t, h5json.Ref{Collection: "datasets", ID: "abc-123"}, ref)
	assert.Equal(t, "datasets/abc-123", ref.String())

	ref, isRef, err = h5json.ParseRef("groups/g-1/extra/segments")
	require.NoError(t, err)
	require.True(t, isRef)
	assert.Equal(t, "g-1", ref.ID)
	assert.Equal(t, "extra/segments", ref.Rest)
	assert.Equal(t, "groups/g-1/extra/segments", ref.String())
}

func TestParseRef_NotAReference(t *testing.T) {
	for _, s := range []string{"", "plain string", "nothing-here", "widgets/abc", "0"} {
		_, isRef, err := h5json.ParseRef(s)
		require.NoError(t, err, s)
		assert.False(t, isRef, s)
	}
}

func TestParseRef_Malformed(t *testing.T) {
	for _, s := range []string{"datasets/", "groups/", "datatypes/"} {
		_, isRef, err := h5json.ParseRef(s)
		assert.True(t, isRef, s)
		is := firstIssue(t, err)
		assert.Equal(t, h5json.CodeMalformedReference, is.Code, s)
	}
}
