// Package h5json validates and transforms HDF5/JSON descriptions of
// hierarchical scientific data containers:
//
//   - Structural validation of datatype, dataspace and object descriptions
//     (ValidateObject, ParseDatatype, ParseDataspace) with a stable error
//     model via Issues (JSON Pointer, code, message)
//   - Value conformance checking against the declared datatype and shape
//   - Hierarchy reconstruction over hard links (GroupPaths, DatasetPaths)
//   - Identity rewriting so a detached subgraph becomes self-consistent
//     under fresh identifiers (Detach, DetachDocument)
//
// Validators are pure and stateless: they never log, never mutate their
// input, and surface the first violated invariant of an object as Issues.
// The storage backend lives under storage/ and the CLI under cmd/h5json.
//
// Typical usage:
//
//	doc, err := h5json.DecodeDocument(data)
//	if err := h5json.ValidateDocument(doc); err != nil { ... }
//	detached, err := h5json.DetachDocument(doc)
package h5json
