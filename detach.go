package h5json

import "github.com/google/uuid"

// Reserved attribute names whose values embed identifier-bearing reference
// paths that must be rewritten when identities change.
const (
	AttrReferenceList = "REFERENCE_LIST"
	AttrDimensionList = "DIMENSION_LIST"
	AttrClass         = "CLASS"

	// DimensionScale is the CLASS attribute value marking a scale dataset.
	DimensionScale = "DIMENSION_SCALE"
)

// Detach rewrites the identity of every object in a flat object list so the
// subgraph becomes independent from its source: each distinct identifier is
// replaced by a freshly generated one, consistently across object ids, parent
// ids and the reference paths embedded in dimension-scale linkage attribute
// values. The input is not mutated; an independent copy and the new root
// identifier are returned.
func Detach(objs []Object, rootID string) ([]Object, string, error) {
	if rootID == "" {
		return nil, "", failAt(Root().Field("root"), CodeMissingRequiredField, "root identifier missing", nil)
	}

	// First pass: collect every distinct old identifier and mint all
	// substitutes up front, so the second pass is a pure finite-map lookup.
	subst := map[string]string{rootID: uuid.NewString()}
	for i, o := range objs {
		id, ok := o["id"].(string)
		if !ok || id == "" {
			return nil, "", failAt(Root().Index(i).Field("id"), CodeMissingRequiredField,
				"object identifier missing", nil)
		}
		claim(subst, id)
		if pid, ok := o["_pid"].(string); ok && pid != "" {
			claim(subst, pid)
		}
		if !isLinkageAttribute(o) {
			continue
		}
		if val, present := o["value"]; present {
			if err := collectRefIDs(val, subst, Root().Index(i).Field("value")); err != nil {
				return nil, "", err
			}
		}
	}

	// Second pass: substitute over a deep copy.
	out := make([]Object, len(objs))
	for i, o := range objs {
		c := copyValue(o).(map[string]any)
		c["id"] = subst[c["id"].(string)]
		if pid, ok := c["_pid"].(string); ok && pid != "" {
			c["_pid"] = subst[pid]
		}
		if isLinkageAttribute(c) {
			if val, present := c["value"]; present {
				c["value"] = rewriteRefs(val, subst)
			}
		}
		out[i] = c
	}
	return out, subst[rootID], nil
}

func claim(subst map[string]string, id string) {
	if _, ok := subst[id]; !ok {
		subst[id] = uuid.NewString()
	}
}

// isLinkageAttribute reports whether o is an attribute object carrying one of
// the two reserved link-tracking names.
func isLinkageAttribute(o Object) bool {
	if t, _ := o["_objtype"].(string); t != TypeAttribute {
		return false
	}
	name, _ := o["name"].(string)
	return name == AttrReferenceList || name == AttrDimensionList
}

// collectRefIDs walks a nested-sequence value and claims a substitute for the
// identifier of every embedded reference path. Malformed references error.
func collectRefIDs(v any, subst map[string]string, at Pointer) error {
	if seq, ok := asSequence(v); ok {
		for i, item := range seq {
			if err := collectRefIDs(item, subst, at.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	ref, isRef, err := ParseRef(s)
	if err != nil {
		return retarget(err, at)
	}
	if isRef {
		claim(subst, ref.ID)
	}
	return nil
}

// rewriteRefs replaces the identifier segment of every embedded reference
// path, leaving every other scalar untouched. The substitution map is total
// over reference identifiers after the collection pass.
func rewriteRefs(v any, subst map[string]string) any {
	if seq, ok := asSequence(v); ok {
		for i, item := range seq {
			seq[i] = rewriteRefs(item, subst)
		}
		return seq
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	ref, isRef, err := ParseRef(s)
	if !isRef || err != nil {
		return v
	}
	ref.ID = subst[ref.ID]
	return ref.String()
}

// copyValue deep-copies a decoded JSON value.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, item := range t {
			c[k] = copyValue(item)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, item := range t {
			c[i] = copyValue(item)
		}
		return c
	default:
		return v
	}
}

// DetachDocument rewrites the identities of a whole document: groups,
// datasets, committed datatypes and their inline attributes, plus hard-link
// targets, so the result shares no identifier with the source.
func DetachDocument(doc *Document) (*Document, error) {
	if doc.Root == "" {
		return nil, failAt(Root().Field("root"), CodeMissingRequiredField, "root key missing", nil)
	}
	subst := map[string]string{doc.Root: uuid.NewString()}
	for _, collection := range []map[string]Object{doc.Groups, doc.Datasets, doc.Datatypes} {
		for id, obj := range collection {
			claim(subst, id)
			if err := collectAttrRefIDs(obj, subst); err != nil {
				return nil, err
			}
		}
	}

	out := &Document{
		APIVersion: doc.APIVersion,
		Root:       subst[doc.Root],
		Groups:     rewriteCollection(doc.Groups, subst),
		Datasets:   rewriteCollection(doc.Datasets, subst),
		Datatypes:  rewriteCollection(doc.Datatypes, subst),
	}
	return out, nil
}

func collectAttrRefIDs(obj Object, subst map[string]string) error {
	attrs, ok := asSequence(obj["attributes"])
	if !ok {
		return nil
	}
	for i, av := range attrs {
		attr, ok := av.(map[string]any)
		if !ok {
			continue
		}
		name, _ := attr["name"].(string)
		if name != AttrReferenceList && name != AttrDimensionList {
			continue
		}
		if val, present := attr["value"]; present {
			if err := collectRefIDs(val, subst, Root().Field("attributes").Index(i).Field("value")); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteCollection(objs map[string]Object, subst map[string]string) map[string]Object {
	if objs == nil {
		return nil
	}
	out := make(map[string]Object, len(objs))
	for id, obj := range objs {
		c := copyValue(obj).(map[string]any)
		if links, ok := asSequence(c["links"]); ok {
			for _, lv := range links {
				if l, ok := lv.(map[string]any); ok {
					if target, ok := l["id"].(string); ok {
						claim(subst, target)
						l["id"] = subst[target]
					}
				}
			}
		}
		if attrs, ok := asSequence(c["attributes"]); ok {
			for _, av := range attrs {
				attr, ok := av.(map[string]any)
				if !ok {
					continue
				}
				name, _ := attr["name"].(string)
				if name != AttrReferenceList && name != AttrDimensionList {
					continue
				}
				if val, present := attr["value"]; present {
					attr["value"] = rewriteRefs(val, subst)
				}
			}
		}
		out[subst[id]] = c
	}
	return out
}
