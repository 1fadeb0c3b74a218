package h5json

import "fmt"

// DatatypeClass identifies a datatype variant.
type DatatypeClass string

const (
	ClassInteger   DatatypeClass = "H5T_INTEGER"
	ClassFloat     DatatypeClass = "H5T_FLOAT"
	ClassString    DatatypeClass = "H5T_STRING"
	ClassReference DatatypeClass = "H5T_REFERENCE"
	ClassCompound  DatatypeClass = "H5T_COMPOUND"
	ClassVlen      DatatypeClass = "H5T_VLEN"
	ClassArray     DatatypeClass = "H5T_ARRAY"

	// Recognized for name mapping only; not accepted by the validator.
	ClassBitfield DatatypeClass = "H5T_BITFIELD"
	ClassOpaque   DatatypeClass = "H5T_OPAQUE"
)

// String datatype vocabulary.
const (
	CharSetASCII = "H5T_CSET_ASCII"
	CharSetUTF8  = "H5T_CSET_UTF8"

	StrPadNullTerm = "H5T_STR_NULLTERM"
	StrPadNullPad  = "H5T_STR_NULLPAD"
	StrPadSpacePad = "H5T_STR_SPACEPAD"

	LengthVariable = "H5T_VARIABLE"
)

// Reference datatype bases.
const (
	RefObject = "H5T_STD_REF_OBJ"
	RefRegion = "H5T_STD_REF_DSETREG"
)

// Nesting and rank ceilings. Shapes and array datatypes are capped at 32 axes
// by the container format; descriptor recursion gets a generous fixed ceiling
// so hostile inputs fail cleanly instead of overflowing the stack.
const (
	MaxRank    = 32
	MaxNesting = 64
)

// StrLength is a string datatype length: the variable sentinel or a positive
// byte count, resolved once at construction.
type StrLength struct {
	Variable bool
	N        uint64
}

// CompoundField is one named member of a compound datatype.
type CompoundField struct {
	Name string
	Type *Datatype
}

// Datatype is the closed tagged variant over datatype classes. Only the
// fields belonging to Class are populated.
type Datatype struct {
	Class DatatypeClass

	Base string // predefined name (integer/float) or reference kind

	CharSet string    // string
	StrPad  string    // string
	Length  StrLength // string

	Fields []CompoundField // compound

	Item *Datatype // vlen/array element type
	Dims []uint64  // array
}

// ValidateDatatype validates a loose datatype descriptor as exchanged over
// JSON. It never inspects values.
func ValidateDatatype(v any) error {
	_, err := ParseDatatype(v, Root())
	return err
}

// ParseDatatype validates a loose datatype descriptor rooted at the given
// pointer and constructs the typed variant. Validation is structurally
// recursive over compound fields and vlen/array bases.
func ParseDatatype(v any, at Pointer) (*Datatype, error) {
	return parseDatatype(v, at, 0)
}

func parseDatatype(v any, at Pointer, depth int) (*Datatype, error) {
	if depth > MaxNesting {
		return nil, failAt(at, CodeNestingTooDeep,
			fmt.Sprintf("datatype nesting exceeds %d levels", MaxNesting), nil)
	}
	t, ok := v.(map[string]any)
	if !ok {
		return nil, failAt(at, CodeUnsupportedDatatype, "datatype must be a mapping", nil)
	}
	clsVal, ok := t["class"]
	if !ok {
		return nil, failAt(at.Field("class"), CodeMissingRequiredField, "datatype class missing", nil)
	}
	cls, _ := clsVal.(string)

	switch DatatypeClass(cls) {
	case ClassCompound:
		return parseCompound(t, at, depth)
	case ClassVlen:
		base, ok := t["base"]
		if !ok {
			return nil, failAt(at.Field("base"), CodeMissingRequiredField, "H5T_VLEN datatype base missing", nil)
		}
		item, err := parseDatatype(base, at.Field("base"), depth+1)
		if err != nil {
			return nil, err
		}
		return &Datatype{Class: ClassVlen, Item: item}, nil
	case ClassArray:
		return parseArray(t, at, depth)
	default:
		return parseAtomic(t, DatatypeClass(cls), at)
	}
}

func parseCompound(t map[string]any, at Pointer, depth int) (*Datatype, error) {
	fieldsVal, ok := t["fields"]
	if !ok {
		return nil, failAt(at.Field("fields"), CodeMissingRequiredField, "compound datatype member list missing", nil)
	}
	fields, ok := asSequence(fieldsVal)
	if !ok {
		return nil, failAt(at.Field("fields"), CodeUnsupportedDatatype, "compound datatype members must be in a list", nil)
	}
	if len(fields) == 0 {
		return nil, failAt(at.Field("fields"), CodeMissingRequiredField, "compound datatype must have at least one member", nil)
	}
	dt := &Datatype{Class: ClassCompound, Fields: make([]CompoundField, 0, len(fields))}
	seen := make(map[string]struct{}, len(fields))
	for i, fv := range fields {
		fat := at.Field("fields").Index(i)
		f, ok := fv.(map[string]any)
		if !ok {
			return nil, failAt(fat, CodeUnsupportedDatatype, "compound member must be a mapping", nil)
		}
		nameVal, ok := f["name"]
		if !ok {
			return nil, failAt(fat.Field("name"), CodeMissingRequiredField, "compound member name missing", nil)
		}
		name, _ := nameVal.(string)
		if name == "" {
			return nil, failAt(fat.Field("name"), CodeMissingRequiredField, "empty name for a compound member", nil)
		}
		typVal, ok := f["type"]
		if !ok {
			return nil, failAt(fat.Field("type"), CodeMissingRequiredField,
				fmt.Sprintf("compound member %q missing datatype", name), nil)
		}
		// Sibling names are compared case-sensitively.
		if _, dup := seen[name]; dup {
			return nil, failAt(fat.Field("name"), CodeDuplicateFieldName,
				fmt.Sprintf("%s: compound member name is not unique", name), map[string]any{"name": name})
		}
		seen[name] = struct{}{}
		ft, err := parseDatatype(typVal, fat.Field("type"), depth+1)
		if err != nil {
			return nil, err
		}
		dt.Fields = append(dt.Fields, CompoundField{Name: name, Type: ft})
	}
	return dt, nil
}

func parseArray(t map[string]any, at Pointer, depth int) (*Datatype, error) {
	dimsVal, ok := t["dims"]
	if !ok {
		return nil, failAt(at.Field("dims"), CodeMissingRequiredField, "H5T_ARRAY dimensions missing", nil)
	}
	dims, ok := asSequence(dimsVal)
	if !ok {
		return nil, failAt(at.Field("dims"), CodeInvalidRank, "H5T_ARRAY dimensions must be in a list", nil)
	}
	if len(dims) == 0 || len(dims) > MaxRank {
		return nil, failAt(at.Field("dims"), CodeInvalidRank,
			fmt.Sprintf("invalid H5T_ARRAY rank: %d", len(dims)), map[string]any{"rank": len(dims)})
	}
	out := make([]uint64, len(dims))
	for i, dv := range dims {
		d, integral := asInt(dv)
		if !integral {
			return nil, failAt(at.Field("dims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("H5T_ARRAY dimension #%d must be integer", i), nil)
		}
		if d <= 0 {
			return nil, failAt(at.Field("dims").Index(i), CodeDimensionOutOfRange,
				fmt.Sprintf("H5T_ARRAY dimension #%d must be positive: %d", i, d), map[string]any{"got": d})
		}
		out[i] = uint64(d)
	}
	base, ok := t["base"]
	if !ok {
		return nil, failAt(at.Field("base"), CodeMissingRequiredField, "H5T_ARRAY datatype base missing", nil)
	}
	item, err := parseDatatype(base, at.Field("base"), depth+1)
	if err != nil {
		return nil, err
	}
	return &Datatype{Class: ClassArray, Item: item, Dims: out}, nil
}

func parseAtomic(t map[string]any, cls DatatypeClass, at Pointer) (*Datatype, error) {
	switch cls {
	case ClassString:
		return parseString(t, at)
	case ClassInteger, ClassFloat:
		baseVal, ok := t["base"]
		if !ok {
			return nil, failAt(at.Field("base"), CodeMissingRequiredField,
				"H5T_FLOAT/H5T_INTEGER predefined datatype missing", nil)
		}
		base, _ := baseVal.(string)
		if _, ok := lookupPredefined(base); !ok {
			return nil, failAt(at.Field("base"), CodeUnknownBaseType,
				fmt.Sprintf("%s: invalid predefined datatype", base), map[string]any{"base": base})
		}
		return &Datatype{Class: cls, Base: base}, nil
	case ClassReference:
		baseVal, ok := t["base"]
		if !ok {
			return nil, failAt(at.Field("base"), CodeMissingRequiredField, "datatype reference base missing", nil)
		}
		base, _ := baseVal.(string)
		if base != RefObject && base != RefRegion {
			return nil, failAt(at.Field("base"), CodeUnknownBaseType,
				fmt.Sprintf("%s: invalid reference type", base), map[string]any{"base": base})
		}
		return &Datatype{Class: ClassReference, Base: base}, nil
	default:
		return nil, failAt(at.Field("class"), CodeUnsupportedDatatype,
			fmt.Sprintf("%s: HDF5 datatype not supported", cls), map[string]any{"class": string(cls)})
	}
}

func parseString(t map[string]any, at Pointer) (*Datatype, error) {
	for _, k := range []string{"charSet", "length", "strPad"} {
		if _, ok := t[k]; !ok {
			return nil, failAt(at.Field(k), CodeMissingRequiredField,
				fmt.Sprintf("missing %q string information", k), nil)
		}
	}
	dt := &Datatype{Class: ClassString}

	cs, _ := t["charSet"].(string)
	if cs != CharSetASCII && cs != CharSetUTF8 {
		return nil, failAt(at.Field("charSet"), CodeInvalidStringEncoding,
			fmt.Sprintf("%v: invalid string character set", t["charSet"]), nil)
	}
	dt.CharSet = cs

	pad, _ := t["strPad"].(string)
	if pad != StrPadNullTerm && pad != StrPadNullPad && pad != StrPadSpacePad {
		return nil, failAt(at.Field("strPad"), CodeInvalidStringEncoding,
			fmt.Sprintf("%v: invalid string padding", t["strPad"]), nil)
	}
	dt.StrPad = pad

	if s, ok := t["length"].(string); ok && s == LengthVariable {
		dt.Length = StrLength{Variable: true}
		return dt, nil
	}
	n, integral := asInt(t["length"])
	if !integral || n <= 0 {
		return nil, failAt(at.Field("length"), CodeInvalidStringEncoding,
			fmt.Sprintf("%v: invalid string length value", t["length"]), nil)
	}
	dt.Length = StrLength{N: uint64(n)}
	return dt, nil
}
