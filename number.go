package h5json

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Numeric coercion helpers. Documents are decoded with UseNumber so integer
// and real JSON literals stay distinguishable; helpers also accept native Go
// numbers for values constructed programmatically.

// integerText returns the decimal text of v when v carries an integral value.
// A JSON number with a fraction or exponent is not an integer, mirroring the
// wire distinction between 3 and 3.0.
func integerText(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		s := n.String()
		if strings.ContainsAny(s, ".eE") {
			return "", false
		}
		return s, true
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	default:
		return "", false
	}
}

// asUint interprets v as an unsigned 64-bit size. The second result reports
// whether v was integral at all; the third whether it fit the u64 range.
func asUint(v any) (u uint64, integral bool, inRange bool) {
	s, ok := integerText(v)
	if !ok {
		return 0, false, false
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, true, false
	}
	return u, true, true
}

// asInt interprets v as a signed 64-bit integer.
func asInt(v any) (int64, bool) {
	s, ok := integerText(v)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// asFloat interprets v as a real number. Integral values qualify. overflow is
// set when the literal is finite text but exceeds the float64 range.
func asFloat(v any) (f float64, ok bool, overflow bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			if numErr, isNum := err.(*strconv.NumError); isNum && numErr.Err == strconv.ErrRange {
				return f, true, true
			}
			return 0, false, false
		}
		return f, true, false
	case float32:
		return float64(n), true, false
	case float64:
		return n, true, false
	default:
		if s, isInt := integerText(v); isInt {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, false, false
			}
			return f, true, false
		}
		return 0, false, false
	}
}

// asSequence reports whether v is a JSON array value.
func asSequence(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// closeTo reports whether a equals b within rel relative tolerance, the same
// boundary absorption applied to floats that round-tripped through text.
func closeTo(a, b, rel float64) bool {
	diff := math.Abs(a - b)
	return diff <= rel*math.Abs(b)
}
