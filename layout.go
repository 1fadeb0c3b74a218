package h5json

import "fmt"

// LayoutClass identifies a dataset storage layout.
type LayoutClass string

const (
	LayoutContiguous LayoutClass = "H5D_CONTIGUOUS"
	LayoutChunked    LayoutClass = "H5D_CHUNKED"
	LayoutCompact    LayoutClass = "H5D_COMPACT"
)

// maxChunkDim bounds a single chunk dimension; the element count of a whole
// chunk must also stay below 2^32.
const maxChunkDim = 0xffffffff

// Layout is the closed tagged variant over layout classes. Dims is populated
// for chunked layouts only.
type Layout struct {
	Class LayoutClass
	Dims  []uint64
}

// ParseLayout validates a loose layout descriptor against the dataset's
// dataspace and constructs the typed variant. space may be nil when the
// object carries no shape; a chunked layout then fails, since chunking is
// only defined for simple dataspaces.
func ParseLayout(v any, space *Dataspace, at Pointer) (*Layout, error) {
	l, ok := v.(map[string]any)
	if !ok {
		return nil, failAt(at, CodeInvalidLayoutClass, "layout must be a mapping", nil)
	}
	clsVal, ok := l["class"]
	if !ok {
		return nil, failAt(at.Field("class"), CodeMissingRequiredField, "missing layout class", nil)
	}
	cls, _ := clsVal.(string)
	switch LayoutClass(cls) {
	case LayoutChunked:
		return parseChunked(l, space, at)
	case LayoutContiguous, LayoutCompact:
		if _, present := l["dims"]; present {
			return nil, failAt(at.Field("dims"), CodeUnexpectedChunkDims,
				fmt.Sprintf("dims not allowed for layout class %s", cls), nil)
		}
		return &Layout{Class: LayoutClass(cls)}, nil
	default:
		return nil, failAt(at.Field("class"), CodeInvalidLayoutClass,
			fmt.Sprintf("%v: invalid layout class", clsVal), nil)
	}
}

func parseChunked(l map[string]any, space *Dataspace, at Pointer) (*Layout, error) {
	dimsVal, ok := l["dims"]
	if !ok {
		return nil, failAt(at.Field("dims"), CodeMissingRequiredField, "missing chunking dimensions", nil)
	}
	dims, ok := asSequence(dimsVal)
	if !ok {
		return nil, failAt(at.Field("dims"), CodeInvalidRank, "chunking dimensions must be a list", nil)
	}
	if len(dims) == 0 {
		return nil, failAt(at.Field("dims"), CodeInvalidRank, "chunking dimensions must not be empty", nil)
	}

	out := make([]uint64, len(dims))
	elements := uint64(1)
	for i, dv := range dims {
		d, integral := asInt(dv)
		if !integral {
			return nil, failAt(at.Field("dims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("chunking dimension %v must be integer", dv), nil)
		}
		if d <= 0 || d > maxChunkDim {
			return nil, failAt(at.Field("dims").Index(i), CodeChunkTooLarge,
				fmt.Sprintf("chunk dimension value %d must be positive integer smaller than 2^32", d),
				map[string]any{"got": d})
		}
		out[i] = uint64(d)
		elements *= out[i]
		// Each factor fits in 32 bits, so the running product cannot wrap
		// uint64 before this bound trips.
		if elements > maxChunkDim {
			return nil, failAt(at.Field("dims"), CodeChunkTooLarge,
				"number of elements in a chunk must be less than 2^32", nil)
		}
	}

	if space == nil || space.Class != SpaceSimple {
		cls := "no"
		if space != nil {
			cls = string(space.Class)
		}
		return nil, failAt(at, CodeInvalidLayoutClass,
			fmt.Sprintf("%s dataspace cannot be chunked", cls), nil)
	}
	if len(out) != space.Rank() {
		return nil, failAt(at.Field("dims"), CodeRankMismatch,
			"chunk rank must be same as shape rank",
			map[string]any{"chunkRank": len(out), "shapeRank": space.Rank()})
	}
	// Unlimited axes carry no chunk bound.
	for i, m := range space.MaxDims {
		if m.Unlimited {
			continue
		}
		if out[i] > m.N {
			return nil, failAt(at.Field("dims").Index(i), CodeDimsExceedMaxdims,
				fmt.Sprintf("chunking dim size %d greater than max size %d", out[i], m.N),
				map[string]any{"chunk": out[i], "max": m.N})
		}
	}
	return &Layout{Class: LayoutChunked, Dims: out}, nil
}
