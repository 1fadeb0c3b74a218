package h5json

import "fmt"

// FilterClass identifies a filter variant in the dataset filter pipeline.
type FilterClass string

const (
	FilterDeflate     FilterClass = "H5Z_FILTER_DEFLATE"
	FilterFletcher32  FilterClass = "H5Z_FILTER_FLETCHER32"
	FilterNbit        FilterClass = "H5Z_FILTER_NBIT"
	FilterScaleOffset FilterClass = "H5Z_FILTER_SCALEOFFSET"
	FilterShuffle     FilterClass = "H5Z_FILTER_SHUFFLE"
	FilterSzip        FilterClass = "H5Z_FILTER_SZIP"
	FilterUser        FilterClass = "H5Z_FILTER_USER"
)

// Scale-offset filter scale types.
const (
	ScaleFloatDScale = "H5Z_SO_FLOAT_DSCALE"
	ScaleFloatEScale = "H5Z_SO_FLOAT_ESCALE"
	ScaleInt         = "H5Z_SO_INT"
)

// Filter is the closed tagged variant over filter classes. Only the fields
// belonging to Class are populated.
type Filter struct {
	Class FilterClass
	ID    int64

	Level       int64  // deflate
	ScaleType   string // scaleoffset
	ScaleOffset int64  // scaleoffset
	Parameters  any    // user
}

// ParseFilters validates a loose filter pipeline and constructs the typed
// variants. layout and dtype supply the cross-field context: a non-empty
// pipeline is only legal under chunked layout, and scale-offset scale types
// must agree with the object's datatype class. Either may be nil when the
// object does not carry them.
func ParseFilters(v any, layout *Layout, dtype *Datatype, at Pointer) ([]Filter, error) {
	seq, ok := asSequence(v)
	if !ok {
		return nil, failAt(at, CodeInvalidFilterParameters, "filters must be in a list", nil)
	}
	if layout != nil && layout.Class != LayoutChunked && len(seq) != 0 {
		return nil, failAt(at, CodeFiltersRequireChunking, "filters allowed only with chunked layout", nil)
	}

	out := make([]Filter, 0, len(seq))
	var haveScaleOffset, haveFletcher32 bool
	for i, fv := range seq {
		fat := at.Index(i)
		f, err := parseFilter(fv, dtype, fat)
		if err != nil {
			return nil, err
		}
		switch f.Class {
		case FilterScaleOffset:
			haveScaleOffset = true
		case FilterFletcher32:
			haveFletcher32 = true
		}
		out = append(out, f)
	}

	if haveScaleOffset && haveFletcher32 {
		return nil, failAt(at, CodeIncompatibleFilters,
			"scale-offset compression filter cannot be combined with the Fletcher32 checksum filter", nil)
	}
	return out, nil
}

func parseFilter(v any, dtype *Datatype, at Pointer) (Filter, error) {
	f, ok := v.(map[string]any)
	if !ok {
		return Filter{}, failAt(at, CodeInvalidFilterParameters, "filter info not in a mapping", nil)
	}
	clsVal, ok := f["class"]
	if !ok {
		return Filter{}, failAt(at.Field("class"), CodeMissingRequiredField, "filter class missing", nil)
	}
	idVal, ok := f["id"]
	if !ok {
		return Filter{}, failAt(at.Field("id"), CodeMissingRequiredField, "filter id missing", nil)
	}
	id, integral := asInt(idVal)
	if !integral {
		return Filter{}, failAt(at.Field("id"), CodeInvalidFilterParameters,
			fmt.Sprintf("filter id must be integer: %v", idVal), nil)
	}
	if id <= 0 {
		return Filter{}, failAt(at.Field("id"), CodeInvalidFilterParameters,
			fmt.Sprintf("filter id must be positive: %d", id), map[string]any{"got": id})
	}

	cls, _ := clsVal.(string)
	flt := Filter{Class: FilterClass(cls), ID: id}
	switch flt.Class {
	case FilterDeflate:
		levelVal, ok := f["level"]
		if !ok {
			return Filter{}, failAt(at.Field("level"), CodeMissingRequiredField, "missing deflate level", nil)
		}
		level, integral := asInt(levelVal)
		if !integral {
			return Filter{}, failAt(at.Field("level"), CodeInvalidFilterParameters,
				fmt.Sprintf("deflate level must be integer: %v", levelVal), nil)
		}
		if level < 0 || level > 9 {
			return Filter{}, failAt(at.Field("level"), CodeInvalidFilterParameters,
				fmt.Sprintf("deflate level out of range: %d", level),
				map[string]any{"min": 0, "max": 9, "got": level})
		}
		flt.Level = level

	case FilterScaleOffset:
		return parseScaleOffset(f, flt, dtype, at)

	case FilterUser:
		params, ok := f["parameters"]
		if !ok {
			return Filter{}, failAt(at.Field("parameters"), CodeMissingRequiredField,
				"user filter missing parameters", nil)
		}
		flt.Parameters = params

	case FilterFletcher32, FilterNbit, FilterShuffle, FilterSzip:
		// No extra parameters to validate.

	default:
		return Filter{}, failAt(at.Field("class"), CodeInvalidFilterParameters,
			fmt.Sprintf("%s: invalid filter class", cls), map[string]any{"class": cls})
	}
	return flt, nil
}

func parseScaleOffset(f map[string]any, flt Filter, dtype *Datatype, at Pointer) (Filter, error) {
	stVal, ok := f["scaleType"]
	if !ok {
		return Filter{}, failAt(at.Field("scaleType"), CodeMissingRequiredField, "missing scale type", nil)
	}
	st, _ := stVal.(string)
	if st != ScaleFloatDScale && st != ScaleFloatEScale && st != ScaleInt {
		return Filter{}, failAt(at.Field("scaleType"), CodeInvalidFilterParameters,
			fmt.Sprintf("%v: invalid scale-offset filter type", stVal), nil)
	}
	if _, ok := f["scaleOffset"]; !ok {
		return Filter{}, failAt(at.Field("scaleOffset"), CodeMissingRequiredField, "missing scale offset", nil)
	}

	var dtCls DatatypeClass
	if dtype != nil {
		dtCls = dtype.Class
	}
	switch st {
	case ScaleInt:
		if dtCls != ClassInteger {
			return Filter{}, failAt(at.Field("scaleType"), CodeInvalidFilterParameters,
				fmt.Sprintf("%s: scale-offset filter type only allowed for integer datatypes", st), nil)
		}
	case ScaleFloatDScale:
		if dtCls != ClassFloat {
			return Filter{}, failAt(at.Field("scaleType"), CodeInvalidFilterParameters,
				fmt.Sprintf("%s: scale-offset filter type only allowed for floating point datatypes", st), nil)
		}
	case ScaleFloatEScale:
		// Rejected pending support in the underlying library.
		return Filter{}, failAt(at.Field("scaleType"), CodeInvalidFilterParameters,
			fmt.Sprintf("%s: scale-offset filter type not supported yet", st), nil)
	}

	so, integral := asInt(f["scaleOffset"])
	if !integral {
		return Filter{}, failAt(at.Field("scaleOffset"), CodeInvalidFilterParameters,
			"scale offset value must be integer", nil)
	}
	if so < 0 {
		return Filter{}, failAt(at.Field("scaleOffset"), CodeInvalidFilterParameters,
			fmt.Sprintf("%d: scale offset value cannot be negative", so), map[string]any{"got": so})
	}
	flt.ScaleType = st
	flt.ScaleOffset = so
	return flt, nil
}
