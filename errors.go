package h5json

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. The set is closed: every validator failure carries exactly one
// of these.
const (
	// Structural/schema violations.
	CodeMissingRequiredField  = "missing_required_field"
	CodeUnknownBaseType       = "unknown_base_type"
	CodeInvalidStringEncoding = "invalid_string_encoding"
	CodeDuplicateFieldName    = "duplicate_field_name"
	CodeInvalidRank           = "invalid_rank"
	CodeUnsupportedDatatype   = "unsupported_datatype"
	CodeInvalidDataspaceClass = "invalid_dataspace_class"
	CodeUnexpectedDimensions  = "unexpected_dimensions"
	CodeDimsExceedMaxdims     = "dims_exceed_maxdims"
	CodeDimensionOutOfRange   = "dimension_out_of_range"

	// Value conformance violations.
	CodeNotAString              = "not_a_string"
	CodeNotAnInteger            = "not_an_integer"
	CodeNotAFloat               = "not_a_float"
	CodeValueOutOfRange         = "value_out_of_range"
	CodeShapeValueMismatch      = "shape_value_mismatch"
	CodeUnexpectedSequenceValue = "unexpected_sequence_value"

	// Dataset creation-property violations.
	CodeInvalidObjectName       = "invalid_object_name"
	CodeInvalidLayoutClass      = "invalid_layout_class"
	CodeChunkTooLarge           = "chunk_too_large"
	CodeRankMismatch            = "rank_mismatch"
	CodeUnexpectedChunkDims     = "unexpected_chunk_dims"
	CodeFiltersRequireChunking  = "filters_require_chunking"
	CodeIncompatibleFilters     = "incompatible_filters"
	CodeInvalidFilterParameters = "invalid_filter_parameters"

	// Graph-level violations raised by the walker and the rewriter.
	CodeCyclicHierarchy    = "cyclic_hierarchy"
	CodeNestingTooDeep     = "nesting_too_deep"
	CodeMalformedReference = "malformed_reference"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer into the offending document (for example: /type/fields/2/name).
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"min":0, "max":9, "got":12})
	// for callers that render or aggregate issues.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unknown_base_type at /type/base
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given pointer with the provided code, message
// and params map. Convenience helper for call sites with many parameters.
func IssueAt(p Pointer, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.String(), Code: code, Message: msg, Params: params}
}

// failAt wraps a single Issue into the Issues error used across the validators,
// which stop at the first violated invariant.
func failAt(p Pointer, code, msg string, params map[string]any) error {
	return Issues{IssueAt(p, code, msg, params)}
}
