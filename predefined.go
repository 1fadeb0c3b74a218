package h5json

import "strings"

// predefined describes one of the fixed predefined sized numeric types.
type predefined struct {
	Bits   int
	Signed bool
	Float  bool
	Common string // commonly used short name, endianness disregarded
}

// predefinedBases enumerates the supported predefined datatypes keyed without
// their endianness suffix.
var predefinedBases = map[string]predefined{
	"H5T_STD_I8":   {Bits: 8, Signed: true, Common: "int8"},
	"H5T_STD_U8":   {Bits: 8, Common: "uint8"},
	"H5T_STD_I16":  {Bits: 16, Signed: true, Common: "int16"},
	"H5T_STD_U16":  {Bits: 16, Common: "uint16"},
	"H5T_STD_I32":  {Bits: 32, Signed: true, Common: "int32"},
	"H5T_STD_U32":  {Bits: 32, Common: "uint32"},
	"H5T_STD_I64":  {Bits: 64, Signed: true, Common: "int64"},
	"H5T_STD_U64":  {Bits: 64, Common: "uint64"},
	"H5T_IEEE_F32": {Bits: 32, Float: true, Common: "float32"},
	"H5T_IEEE_F64": {Bits: 64, Float: true, Common: "float64"},
}

// lookupPredefined resolves a predefined datatype name such as "H5T_STD_I32LE".
// The endianness suffix must be LE or BE.
func lookupPredefined(base string) (predefined, bool) {
	if len(base) < 3 {
		return predefined{}, false
	}
	suffix := base[len(base)-2:]
	if suffix != "LE" && suffix != "BE" {
		return predefined{}, false
	}
	p, ok := predefinedBases[base[:len(base)-2]]
	return p, ok
}

// ItemSize returns the element byte width of a predefined datatype name, or
// false when the name is not one of the supported enumeration.
func ItemSize(base string) (int, bool) {
	p, ok := lookupPredefined(base)
	if !ok {
		return 0, false
	}
	return p.Bits / 8, true
}

// commonClassNames maps non-numeric datatype classes to their short names.
var commonClassNames = map[DatatypeClass]string{
	ClassString:    "string",
	ClassCompound:  "compound",
	ClassArray:     "array",
	ClassReference: "reference",
	ClassVlen:      "vlen",
	ClassBitfield:  "bitfield",
	ClassOpaque:    "opaque",
}

// CommonName converts a datatype to its commonly used short name: the sized
// name for integers and floats ("int32", "float64", ...), the class name
// otherwise. Endianness is disregarded.
func CommonName(dt *Datatype) (string, bool) {
	if dt == nil {
		return "", false
	}
	switch dt.Class {
	case ClassInteger, ClassFloat:
		p, ok := lookupPredefined(dt.Base)
		if !ok {
			return "", false
		}
		return p.Common, true
	default:
		name, ok := commonClassNames[dt.Class]
		return name, ok
	}
}

// trimEndian drops a trailing LE/BE suffix when present. Used when re-keying
// predefined names for display.
func trimEndian(base string) string {
	if strings.HasSuffix(base, "LE") || strings.HasSuffix(base, "BE") {
		return base[:len(base)-2]
	}
	return base
}
