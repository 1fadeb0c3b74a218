package h5json

// IsDimensionScale reports whether a dataset with the given inline attributes
// is a dimension scale: it carries a compound-typed REFERENCE_LIST attribute
// and a CLASS attribute valued DIMENSION_SCALE.
func IsDimensionScale(attrs []any) bool {
	var refList, class bool
	for _, av := range attrs {
		attr, ok := av.(map[string]any)
		if !ok {
			continue
		}
		name, _ := attr["name"].(string)
		switch name {
		case AttrReferenceList:
			if t, ok := attr["type"].(map[string]any); ok {
				if cls, _ := t["class"].(string); DatatypeClass(cls) == ClassCompound {
					refList = true
				}
			}
		case AttrClass:
			if v, _ := attr["value"].(string); v == DimensionScale {
				class = true
			}
		}
	}
	return refList && class
}

// HasDimensionList reports whether a dataset with the given inline attributes
// has dimension scales attached: a variable-length-typed DIMENSION_LIST
// attribute is present.
func HasDimensionList(attrs []any) bool {
	for _, av := range attrs {
		attr, ok := av.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := attr["name"].(string); name != AttrDimensionList {
			continue
		}
		if t, ok := attr["type"].(map[string]any); ok {
			if cls, _ := t["class"].(string); DatatypeClass(cls) == ClassVlen {
				return true
			}
		}
	}
	return false
}
