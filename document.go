package h5json

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Document is the top-level HDF5/JSON exchange format: a root group
// identifier plus per-collection maps from identifier to object description.
// This layout is the bit-exact contract shared with other tools.
type Document struct {
	APIVersion string            `json:"apiVersion,omitempty"`
	Root       string            `json:"root"`
	Groups     map[string]Object `json:"groups,omitempty"`
	Datasets   map[string]Object `json:"datasets,omitempty"`
	Datatypes  map[string]Object `json:"datatypes,omitempty"`
}

// DecodeDocument decodes an HDF5/JSON document. Numbers are kept as
// json.Number so the validators can distinguish integer from real literals.
func DecodeDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeDocument renders a document back to JSON with stable indentation.
func EncodeDocument(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "    ")
}

// Collection names within a document.
const (
	CollectionGroups    = "groups"
	CollectionDatasets  = "datasets"
	CollectionDatatypes = "datatypes"
)

// requiredPerCollection lists the fields every member of a collection must
// carry to be constructible.
var requiredPerCollection = map[string][]string{
	CollectionGroups:    nil,
	CollectionDatasets:  {"type", "shape"},
	CollectionDatatypes: {"type"},
}

// attributeRequired lists the fields every inline attribute must carry.
var attributeRequired = []string{"name", "type", "shape"}

// ValidateDocument validates every object of a document independently and
// reports all collected issues, each rebased onto its document location.
// Per-object validation still stops at that object's first violation.
func ValidateDocument(doc *Document) error {
	var all Issues
	collect := func(collection string, objs map[string]Object) {
		for id, obj := range objs {
			base := Root().Field(collection).Field(id)
			if err := ValidateObject(obj, requiredPerCollection[collection]...); err != nil {
				all = AppendIssues(all, rebaseIssues(err, base)...)
			}
			attrs, ok := asSequence(obj["attributes"])
			if !ok {
				continue
			}
			for i, av := range attrs {
				attr, ok := av.(map[string]any)
				if !ok {
					continue
				}
				if err := ValidateObject(attr, attributeRequired...); err != nil {
					all = AppendIssues(all, rebaseIssues(err, base.Field("attributes").Index(i))...)
				}
			}
		}
	}
	collect(CollectionGroups, doc.Groups)
	collect(CollectionDatasets, doc.Datasets)
	collect(CollectionDatatypes, doc.Datatypes)
	if len(all) > 0 {
		return all
	}
	return nil
}

// rebaseIssues prefixes each issue path in err with base.
func rebaseIssues(err error, base Pointer) Issues {
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: base.String(), Code: CodeMissingRequiredField, Message: err.Error()}}
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		out[i] = it
		if it.Path == "" || it.Path == "/" {
			out[i].Path = base.String()
			continue
		}
		out[i].Path = base.String() + it.Path
	}
	return out
}
