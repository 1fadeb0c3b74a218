package h5json

import (
	"fmt"
	"strings"
)

// Object is a loose object description as exchanged with the storage backend:
// a mapping-of-mappings straight out of a decoded HDF5/JSON document.
type Object = map[string]any

// Object type discriminators used in detached object lists (_objtype).
const (
	TypeGroup     = "group"
	TypeDataset   = "dataset"
	TypeAttribute = "attribute"
	TypeDatatype  = "datatype"
)

// ValidateObject validates a single object description: required fields,
// shape, type, value/shape agreement, name rules and creation properties.
// Checks run in a fixed order and the first violated invariant is returned;
// a missing prerequisite field short-circuits only the checks depending on it.
func ValidateObject(obj Object, required ...string) error {
	for _, k := range required {
		if _, ok := obj[k]; !ok {
			return failAt(Root().Field(k), CodeMissingRequiredField,
				fmt.Sprintf("%s: required but missing", k), map[string]any{"field": k})
		}
	}

	var space *Dataspace
	if sv, ok := obj["shape"]; ok {
		var err error
		if space, err = ParseDataspace(sv, Root().Field("shape")); err != nil {
			return err
		}
	}

	var dtype *Datatype
	if tv, ok := obj["type"]; ok {
		var err error
		if dtype, err = ParseDatatype(tv, Root().Field("type")); err != nil {
			return err
		}
	}

	if vv, ok := obj["value"]; ok {
		if err := validateValue(vv, space, dtype); err != nil {
			return err
		}
	}

	if nv, ok := obj["name"]; ok {
		if err := validateName(nv); err != nil {
			return err
		}
	}

	if cpv, ok := obj["creationProperties"]; ok {
		if err := validateCreationProperties(cpv, space, dtype); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(v any, space *Dataspace, dtype *Datatype) error {
	at := Root().Field("value")
	if space != nil {
		switch space.Class {
		case SpaceSimple:
			if _, ok := asSequence(v); !ok {
				return failAt(at, CodeShapeValueMismatch,
					fmt.Sprintf("value(s) must be in a list for %s dataspace", space.Class), nil)
			}
			if err := matchValueShape(v, space.Dims, at); err != nil {
				return err
			}
		case SpaceScalar:
			if _, ok := asSequence(v); ok {
				return failAt(at, CodeUnexpectedSequenceValue,
					fmt.Sprintf("value cannot be in a list for %s dataspace", space.Class), nil)
			}
		}
	}
	if dtype != nil {
		leaf, err := NewValueChecker(dtype.Class, dtype.Base)
		if err != nil {
			return retarget(err, Root().Field("type"))
		}
		return CheckValue(v, leaf, at)
	}
	return nil
}

// matchValueShape verifies that the nesting widths of v exactly equal dims.
// Ragged rows and rank disagreements both surface as a shape mismatch.
func matchValueShape(v any, dims []uint64, at Pointer) error {
	seq, isSeq := asSequence(v)
	if len(dims) == 0 {
		if isSeq {
			return failAt(at, CodeShapeValueMismatch,
				"value nesting deeper than the declared shape", nil)
		}
		return nil
	}
	if !isSeq {
		return failAt(at, CodeShapeValueMismatch,
			"value nesting shallower than the declared shape", nil)
	}
	if uint64(len(seq)) != dims[0] {
		return failAt(at, CodeShapeValueMismatch,
			fmt.Sprintf("reported %d and actual %d shape mismatch", dims[0], len(seq)),
			map[string]any{"declared": dims[0], "actual": len(seq)})
	}
	for i, item := range seq {
		if err := matchValueShape(item, dims[1:], at.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func validateName(v any) error {
	at := Root().Field("name")
	name, ok := v.(string)
	if !ok {
		return failAt(at, CodeInvalidObjectName, "object name must be a string", nil)
	}
	if name == "" {
		return failAt(at, CodeInvalidObjectName, "object name is an empty string", nil)
	}
	if strings.Contains(name, "/") {
		return failAt(at, CodeInvalidObjectName,
			fmt.Sprintf("%s: object name contains the path separator", name), map[string]any{"name": name})
	}
	return nil
}

func validateCreationProperties(v any, space *Dataspace, dtype *Datatype) error {
	at := Root().Field("creationProperties")
	cp, ok := v.(map[string]any)
	if !ok {
		return failAt(at, CodeMissingRequiredField, "creationProperties must be a mapping", nil)
	}

	if ev, present := cp["nameCharEncoding"]; present {
		enc, _ := ev.(string)
		if enc != CharSetUTF8 && enc != CharSetASCII {
			return failAt(at.Field("nameCharEncoding"), CodeInvalidStringEncoding,
				fmt.Sprintf("%v: invalid character encoding name", ev), nil)
		}
	}

	var layout *Layout
	if lv, present := cp["layout"]; present {
		var err error
		if layout, err = ParseLayout(lv, space, at.Field("layout")); err != nil {
			return err
		}
	}

	if fv, present := cp["filters"]; present {
		if _, err := ParseFilters(fv, layout, dtype, at.Field("filters")); err != nil {
			return err
		}
	}

	if fill, present := cp["fillValue"]; present && dtype != nil {
		leaf, err := NewValueChecker(dtype.Class, dtype.Base)
		if err != nil {
			return retarget(err, Root().Field("type"))
		}
		return CheckValue(fill, leaf, at.Field("fillValue"))
	}
	return nil
}

// retarget rebases the paths of all issues in err onto p. Used when a helper
// reports against its own root but the caller knows the real location.
func retarget(err error, p Pointer) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = p.String()
		out[i] = it
	}
	return out
}
