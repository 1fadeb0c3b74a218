package h5json

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// floatTolerance is the relative tolerance used on float range boundaries to
// absorb round-trip error in values numerically equal to the boundary.
const floatTolerance = 1e-8

// ValueChecker verifies that a single scalar leaf conforms to a datatype
// class and base.
type ValueChecker func(v any, at Pointer) error

// NewValueChecker builds the per-scalar predicate for the given datatype
// class. Compound and variable-length values are accepted unconditionally;
// element-level checking for composite classes happens elsewhere.
func NewValueChecker(cls DatatypeClass, base string) (ValueChecker, error) {
	switch cls {
	case ClassString:
		return checkString, nil
	case ClassInteger:
		p, ok := lookupPredefined(base)
		if !ok {
			return nil, failAt(Root(), CodeUnknownBaseType,
				fmt.Sprintf("%s: invalid predefined datatype", base), map[string]any{"base": base})
		}
		return integerChecker(base, p), nil
	case ClassFloat:
		p, ok := lookupPredefined(base)
		if !ok {
			return nil, failAt(Root(), CodeUnknownBaseType,
				fmt.Sprintf("%s: invalid predefined datatype", base), map[string]any{"base": base})
		}
		return floatChecker(base, p), nil
	case ClassVlen, ClassCompound:
		return func(any, Pointer) error { return nil }, nil
	default:
		return nil, failAt(Root(), CodeUnsupportedDatatype,
			fmt.Sprintf("%s: HDF5 datatype class is not supported", cls), map[string]any{"class": string(cls)})
	}
}

// CheckValue walks a value that may be a scalar or an arbitrarily nested
// sequence and applies leaf to every scalar. The first failing leaf aborts
// the walk.
func CheckValue(v any, leaf ValueChecker, at Pointer) error {
	return checkValue(v, leaf, at, 0)
}

func checkValue(v any, leaf ValueChecker, at Pointer, depth int) error {
	if depth > MaxNesting {
		return failAt(at, CodeNestingTooDeep,
			fmt.Sprintf("value nesting exceeds %d levels", MaxNesting), nil)
	}
	if seq, ok := asSequence(v); ok {
		for i, item := range seq {
			if err := checkValue(item, leaf, at.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return leaf(v, at)
}

func checkString(v any, at Pointer) error {
	if _, ok := v.(string); !ok {
		return failAt(at, CodeNotAString,
			fmt.Sprintf("%v: value datatype error: not a string", v), nil)
	}
	return nil
}

func integerChecker(base string, p predefined) ValueChecker {
	return func(v any, at Pointer) error {
		s, ok := integerText(v)
		if !ok {
			return failAt(at, CodeNotAnInteger,
				fmt.Sprintf("%v: value datatype error: not an integer", v), nil)
		}
		if p.Signed {
			if _, err := strconv.ParseInt(s, 10, p.Bits); err != nil {
				return failAt(at, CodeValueOutOfRange,
					fmt.Sprintf("%s: value out of range for %s datatype", s, base),
					map[string]any{"base": base, "got": s})
			}
			return nil
		}
		if strings.HasPrefix(s, "-") {
			return failAt(at, CodeValueOutOfRange,
				fmt.Sprintf("%s: value out of range for %s datatype", s, base),
				map[string]any{"base": base, "got": s})
		}
		if _, err := strconv.ParseUint(s, 10, p.Bits); err != nil {
			return failAt(at, CodeValueOutOfRange,
				fmt.Sprintf("%s: value out of range for %s datatype", s, base),
				map[string]any{"base": base, "got": s})
		}
		return nil
	}
}

func floatChecker(base string, p predefined) ValueChecker {
	minVal, maxVal := -math.MaxFloat64, math.MaxFloat64
	if p.Bits == 32 {
		minVal, maxVal = -math.MaxFloat32, math.MaxFloat32
	}
	return func(v any, at Pointer) error {
		f, ok, overflow := asFloat(v)
		if !ok {
			return failAt(at, CodeNotAFloat,
				fmt.Sprintf("%v: value datatype error: not a float", v), nil)
		}
		if overflow ||
			(f < minVal && !closeTo(f, minVal, floatTolerance)) ||
			(f > maxVal && !closeTo(f, maxVal, floatTolerance)) {
			return failAt(at, CodeValueOutOfRange,
				fmt.Sprintf("%v: value out of range for %s datatype", v, base),
				map[string]any{"base": base})
		}
		return nil
	}
}
