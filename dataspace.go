package h5json

import (
	"fmt"
	"math"
)

// DataspaceClass identifies a dataspace variant.
type DataspaceClass string

const (
	SpaceNull   DataspaceClass = "H5S_NULL"
	SpaceScalar DataspaceClass = "H5S_SCALAR"
	SpaceSimple DataspaceClass = "H5S_SIMPLE"
)

// Unlimited is the maxdims sentinel for an extendable axis.
const Unlimited = "H5S_UNLIMITED"

// MaxDim is one maxdims entry: the unlimited sentinel or a fixed upper bound.
type MaxDim struct {
	Unlimited bool
	N         uint64
}

// Dataspace is the closed tagged variant over shape classes. For a simple
// dataspace MaxDims always has the same length as Dims: when the wire form
// omits maxdims it is resolved to Dims at construction and Explicit is false.
type Dataspace struct {
	Class    DataspaceClass
	Dims     []uint64
	MaxDims  []MaxDim
	Explicit bool // maxdims was present in the wire form
}

// Rank returns the number of axes; zero for null and scalar dataspaces.
func (ds *Dataspace) Rank() int { return len(ds.Dims) }

// ValidateDataspace validates a loose shape descriptor as exchanged over JSON.
func ValidateDataspace(v any) error {
	_, err := ParseDataspace(v, Root())
	return err
}

// ParseDataspace validates a loose shape descriptor rooted at the given
// pointer and constructs the typed variant.
func ParseDataspace(v any, at Pointer) (*Dataspace, error) {
	s, ok := v.(map[string]any)
	if !ok {
		return nil, failAt(at, CodeInvalidDataspaceClass, "dataspace must be a mapping", nil)
	}
	clsVal, ok := s["class"]
	if !ok {
		return nil, failAt(at.Field("class"), CodeMissingRequiredField, "dataspace class missing", nil)
	}
	cls, _ := clsVal.(string)
	switch DataspaceClass(cls) {
	case SpaceNull, SpaceScalar:
		for _, k := range []string{"dims", "maxdims"} {
			if _, present := s[k]; present {
				return nil, failAt(at.Field(k), CodeUnexpectedDimensions,
					fmt.Sprintf("%q not allowed for %s dataspace", k, cls), nil)
			}
		}
		return &Dataspace{Class: DataspaceClass(cls)}, nil
	case SpaceSimple:
		return parseSimple(s, at)
	default:
		return nil, failAt(at.Field("class"), CodeInvalidDataspaceClass,
			fmt.Sprintf("%v: invalid dataspace class", clsVal), nil)
	}
}

func parseSimple(s map[string]any, at Pointer) (*Dataspace, error) {
	dimsVal, ok := s["dims"]
	if !ok {
		return nil, failAt(at.Field("dims"), CodeMissingRequiredField,
			"missing dataspace dims information", nil)
	}
	dims, ok := asSequence(dimsVal)
	if !ok {
		return nil, failAt(at.Field("dims"), CodeInvalidRank, "dataspace dims must be a list", nil)
	}
	if len(dims) == 0 || len(dims) > MaxRank {
		return nil, failAt(at.Field("dims"), CodeInvalidRank,
			fmt.Sprintf("dataspace dims: invalid rank: %d", len(dims)), map[string]any{"rank": len(dims)})
	}

	ds := &Dataspace{Class: SpaceSimple, Dims: make([]uint64, len(dims))}
	for i, dv := range dims {
		d, integral, inRange := asUint(dv)
		if !integral {
			return nil, failAt(at.Field("dims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("dataspace dims: dimension #%d must be integer", i+1), nil)
		}
		if !inRange {
			return nil, failAt(at.Field("dims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("dataspace dims: dimension #%d: size out of range", i+1), nil)
		}
		ds.Dims[i] = d
	}

	maxdimsVal, present := s["maxdims"]
	if !present {
		ds.MaxDims = make([]MaxDim, len(ds.Dims))
		for i, d := range ds.Dims {
			ds.MaxDims[i] = MaxDim{N: d}
		}
		return ds, nil
	}

	maxdims, ok := asSequence(maxdimsVal)
	if !ok {
		return nil, failAt(at.Field("maxdims"), CodeInvalidRank, "dataspace maxdims must be a list", nil)
	}
	if len(maxdims) == 0 || len(maxdims) > MaxRank {
		return nil, failAt(at.Field("maxdims"), CodeInvalidRank,
			fmt.Sprintf("dataspace maxdims: invalid rank: %d", len(maxdims)), map[string]any{"rank": len(maxdims)})
	}
	if len(maxdims) != len(dims) {
		return nil, failAt(at.Field("maxdims"), CodeInvalidRank,
			"dataspace dims and maxdims not of same rank", nil)
	}

	ds.Explicit = true
	ds.MaxDims = make([]MaxDim, len(maxdims))
	for i, mv := range maxdims {
		if s, isStr := mv.(string); isStr {
			if s != Unlimited {
				return nil, failAt(at.Field("maxdims").Index(i), CodeDimensionOutOfRange,
					fmt.Sprintf("dataspace maxdims: unlimited dimension size value invalid: %s", s), nil)
			}
			ds.MaxDims[i] = MaxDim{Unlimited: true}
			continue
		}
		m, integral, inRange := asUint(mv)
		if !integral {
			return nil, failAt(at.Field("maxdims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("dataspace maxdims: dimension #%d must be integer or %q", i+1, Unlimited), nil)
		}
		if !inRange || m == 0 || m >= math.MaxUint64 {
			return nil, failAt(at.Field("maxdims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("dataspace maxdims: dimension size out of range: %v", mv), nil)
		}
		if ds.Dims[i] > m {
			return nil, failAt(at.Field("maxdims").Index(i), CodeDimsExceedMaxdims,
				fmt.Sprintf("dimension #%d: dims greater than maxdims", i+1),
				map[string]any{"dim": ds.Dims[i], "maxdim": m})
		}
		ds.MaxDims[i] = MaxDim{N: m}
	}
	return ds, nil
}
