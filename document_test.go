package h5json_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdpserv/h5json"
)

const sampleDoc = `{
    "apiVersion": "1.1.0",
    "root": "g-root",
    "groups": {
        "g-root": {
            "links": [
                {"class": "H5L_TYPE_HARD", "title": "data", "collection": "datasets", "id": "d-1"}
            ]
        }
    },
    "datasets": {
        "d-1": {
            "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I32LE"},
            "shape": {"class": "H5S_SIMPLE", "dims": [3]},
            "value": [1, 2, 3],
            "attributes": [
                {
                    "name": "units",
                    "type": {"class": "H5T_STRING", "charSet": "H5T_CSET_ASCII",
                             "strPad": "H5T_STR_NULLTERM", "length": "H5T_VARIABLE"},
                    "shape": {"class": "H5S_SCALAR"},
                    "value": "kelvin"
                }
            ]
        }
    }
}`

func TestDecodeValidateDocument(t *testing.T) {
	doc, err := h5json.DecodeDocument([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", doc.APIVersion)
	assert.Equal(t, "g-root", doc.Root)
	require.Contains(t, doc.Datasets, "d-1")

	require.NoError(t, h5json.ValidateDocument(doc))
}

func TestEncodeDocument_RoundTrip(t *testing.T) {
	doc, err := h5json.DecodeDocument([]byte(sampleDoc))
	require.NoError(t, err)
	data, err := h5json.EncodeDocument(doc)
	require.NoError(t, err)
	again, err := h5json.DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestValidateDocument_CollectsAllIssues(t *testing.T) {
	doc, err := h5json.DecodeDocument([]byte(`{
        "root": "g-root",
        "groups": {"g-root": {}},
        "datasets": {
            "d-bad-type": {
                "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I99LE"},
                "shape": {"class": "H5S_SCALAR"}
            },
            "d-missing-shape": {
                "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I32LE"}
            }
        },
        "datatypes": {
            "t-bad": {
                "type": {"class": "H5T_COMPOUND", "fields": [
                    {"name": "x", "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I32LE"}},
                    {"name": "x", "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I32LE"}}
                ]}
            }
        }
    }`))
	require.NoError(t, err)

	err = h5json.ValidateDocument(doc)
	iss, ok := h5json.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 3)

	// One issue per faulty object, every path rebased onto its document
	// location. Collection maps iterate in arbitrary order.
	paths := make([]string, len(iss))
	for i, is := range iss {
		paths[i] = is.Path
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		"/datasets/d-bad-type/type/base",
		"/datasets/d-missing-shape/shape",
		"/datatypes/t-bad/type/fields/1/name",
	}, paths)
}

func TestValidateDocument_AttributeIssuesRebased(t *testing.T) {
	doc, err := h5json.DecodeDocument([]byte(`{
        "root": "g-root",
        "groups": {
            "g-root": {
                "attributes": [
                    {"name": "ok",
                     "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I8LE"},
                     "shape": {"class": "H5S_SCALAR"},
                     "value": 1},
                    {"name": "broken",
                     "type": {"class": "H5T_INTEGER", "base": "H5T_STD_I8LE"},
                     "shape": {"class": "H5S_SCALAR"},
                     "value": 1000}
                ]
            }
        }
    }`))
	require.NoError(t, err)

	err = h5json.ValidateDocument(doc)
	iss, ok := h5json.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, h5json.CodeValueOutOfRange, iss[0].Code)
	assert.Equal(t, "/groups/g-root/attributes/1/value", iss[0].Path)
}

func TestIssuesError_Summary(t *testing.T) {
	err := h5json.Issues{
		{Path: "/a", Code: "code_one"},
		{Path: "/b", Code: "code_two"},
		{Path: "/c", Code: "code_three"},
		{Path: "/d", Code: "code_four"},
	}
	assert.Equal(t, "code_one at /a; code_two at /b; code_three at /c; ... (total 4)", err.Error())
}
