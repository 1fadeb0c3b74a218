package h5json

import (
	"fmt"
	"strings"
)

// Ref is a parsed cross-reference path as embedded in dimension-scale linkage
// attribute values: "<collection>/<identifier>[/<remainder>]".
type Ref struct {
	Collection string
	ID         string
	Rest       string
}

// refCollections enumerates the collection prefixes recognized as
// cross-references.
var refCollections = map[string]struct{}{
	CollectionGroups:    {},
	CollectionDatasets:  {},
	CollectionDatatypes: {},
}

// ParseRef parses s as a cross-reference path. The second result is false
// when s does not start with a recognized collection prefix and is therefore
// not a reference at all. A string that does start with one but lacks an
// identifier segment is malformed and errors instead of passing through.
func ParseRef(s string) (Ref, bool, error) {
	head, rest, found := strings.Cut(s, "/")
	if !found {
		return Ref{}, false, nil
	}
	if _, ok := refCollections[head]; !ok {
		return Ref{}, false, nil
	}
	id, remainder, _ := strings.Cut(rest, "/")
	if id == "" {
		return Ref{}, true, failAt(Root(), CodeMalformedReference,
			fmt.Sprintf("%s: reference path missing the identifier segment", s),
			map[string]any{"ref": s})
	}
	return Ref{Collection: head, ID: id, Rest: remainder}, true, nil
}

// String renders the reference back to its path form.
func (r Ref) String() string {
	if r.Rest == "" {
		return r.Collection + "/" + r.ID
	}
	return r.Collection + "/" + r.ID + "/" + r.Rest
}
