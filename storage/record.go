// Package storage persists object descriptions in a SQLite-backed design
// store and converts between the flat storage schema and the nested HDF5/JSON
// description format.
package storage

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/hdpserv/h5json"
)

// LayoutNA marks records of object types that carry no storage layout.
const LayoutNA = "N/A"

// defaultBase is assumed when a chunked dataset's record carries a datatype
// without a predefined base, so a chunk shape can still be derived.
const defaultBase = "H5T_IEEE_F64LE"

// Record is the flat storage-schema form of one object: scalar columns plus
// four independently JSON-serialized documents (dims, maxdims, misc, data).
type Record struct {
	UUID        string
	ParentUUID  string
	Type        string // group | dataset | attribute | datatype
	Name        string
	Description string
	Layout      string // layout class, or "N/A"
	Rank        int
	Dims        string
	Maxdims     string
	Misc        string
	Data        string
}

// ToRecord converts an object description from HDF5/JSON to the storage
// schema. otype is the object type discriminator.
func ToRecord(otype string, obj h5json.Object) (Record, error) {
	rec := Record{Type: otype}
	rec.Name, _ = obj["name"].(string)
	rec.Description, _ = obj["description"].(string)
	if id, ok := obj["uuid"].(string); ok {
		rec.UUID = id
	} else if id, ok := obj["id"].(string); ok {
		rec.UUID = id
	}

	dims := map[string]any{}
	maxdims := map[string]any{}
	misc := map[string]any{}
	data := map[string]any{"value": map[string]any{}}

	switch otype {
	case h5json.TypeAttribute, h5json.TypeDataset:
		if otype == h5json.TypeAttribute {
			rec.Layout = LayoutNA
		}
		dims["dims"] = []any{}
		maxdims["maxdims"] = []any{}
		shape, _ := obj["shape"].(map[string]any)
		if cls, _ := shape["class"].(string); h5json.DataspaceClass(cls) == h5json.SpaceSimple {
			d, _ := shape["dims"].([]any)
			rec.Rank = len(d)
			dims["dims"] = d
			if md, ok := shape["maxdims"]; ok {
				maxdims["maxdims"] = md
			} else {
				maxdims["maxdims"] = d
			}
		}
		misc["datatype"] = obj["type"]
		if v, ok := obj["value"]; ok && v != nil {
			data["value"] = v
		}
		if otype == h5json.TypeDataset {
			rec.Layout = string(h5json.LayoutContiguous)
			cp, _ := obj["creationProperties"].(map[string]any)
			if layout, ok := cp["layout"].(map[string]any); ok {
				if cls, _ := layout["class"].(string); cls != "" {
					rec.Layout = cls
				}
				if h5json.LayoutClass(rec.Layout) == h5json.LayoutChunked {
					if chunks, ok := layout["dims"]; ok {
						misc["chunks"] = chunks
					}
				}
			}
			if filters, ok := cp["filters"]; ok {
				misc["filters"] = filters
			}
			if fill, ok := cp["fillValue"]; ok {
				misc["fillValue"] = fill
			}
		}
	case h5json.TypeGroup, h5json.TypeDatatype:
		rec.Layout = LayoutNA
		if otype == h5json.TypeDatatype {
			misc["datatype"] = obj["type"]
		}
	default:
		return Record{}, fmt.Errorf("%s: object type not supported", otype)
	}

	var err error
	if rec.Dims, err = encodeColumn(dims); err != nil {
		return Record{}, err
	}
	if rec.Maxdims, err = encodeColumn(maxdims); err != nil {
		return Record{}, err
	}
	if rec.Misc, err = encodeColumn(misc); err != nil {
		return Record{}, err
	}
	if rec.Data, err = encodeColumn(data); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ToDescription converts a storage record back to the nested HDF5/JSON
// description format consumed by the validator and the code generator.
func ToDescription(rec Record) (h5json.Object, error) {
	dims, err := decodeColumn(rec.Dims)
	if err != nil {
		return nil, fmt.Errorf("record %s: dims column: %w", rec.UUID, err)
	}
	maxdims, err := decodeColumn(rec.Maxdims)
	if err != nil {
		return nil, fmt.Errorf("record %s: maxdims column: %w", rec.UUID, err)
	}
	misc, err := decodeColumn(rec.Misc)
	if err != nil {
		return nil, fmt.Errorf("record %s: misc column: %w", rec.UUID, err)
	}
	data, err := decodeColumn(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("record %s: data column: %w", rec.UUID, err)
	}

	obj := h5json.Object{
		"_objtype": rec.Type,
		"id":       rec.UUID,
	}
	if rec.Name != "" {
		obj["name"] = rec.Name
	}
	if rec.Description != "" {
		obj["description"] = rec.Description
	}
	if rec.ParentUUID != "" {
		obj["_pid"] = rec.ParentUUID
	}

	switch rec.Type {
	case h5json.TypeAttribute:
		obj["creationProperties"] = map[string]any{"nameCharEncoding": h5json.CharSetUTF8}
		obj["value"] = data["value"]
		obj["type"] = misc["datatype"]
		obj["shape"] = describeShape(rec.Rank, dims, maxdims)
	case h5json.TypeDataset:
		obj["type"] = misc["datatype"]
		obj["shape"] = describeShape(rec.Rank, dims, maxdims)
		if v, ok := data["value"]; ok && !emptyValue(v) {
			obj["value"] = v
		}
		dcpl, err := describeLayout(rec, dims, maxdims, misc)
		if err != nil {
			return nil, err
		}
		obj["creationProperties"] = dcpl
	case h5json.TypeGroup:
		// Links come from their own table, nothing more to restore here.
	case h5json.TypeDatatype:
		obj["type"] = misc["datatype"]
	default:
		return nil, fmt.Errorf("%s: object type not supported", rec.Type)
	}
	return obj, nil
}

func describeShape(rank int, dims, maxdims map[string]any) map[string]any {
	if rank == 0 {
		return map[string]any{"class": string(h5json.SpaceScalar)}
	}
	d := dims["dims"]
	md, ok := maxdims["maxdims"]
	if !ok {
		md = d
	}
	return map[string]any{
		"class":   string(h5json.SpaceSimple),
		"dims":    d,
		"maxdims": md,
	}
}

func describeLayout(rec Record, dims, maxdims, misc map[string]any) (map[string]any, error) {
	dcpl := map[string]any{}
	if h5json.LayoutClass(rec.Layout) == h5json.LayoutChunked {
		chunks, ok := misc["chunks"]
		if !ok || chunks == nil {
			// The record predates chunk bookkeeping; derive a chunk shape
			// from the dataset extent and element width.
			derived, err := deriveChunk(dims, maxdims, misc)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", rec.UUID, err)
			}
			chunks = derived
		}
		dcpl["layout"] = map[string]any{"class": string(h5json.LayoutChunked), "dims": chunks}
	} else {
		dcpl["layout"] = map[string]any{"class": rec.Layout}
	}
	if filters, ok := misc["filters"].([]any); ok && len(filters) > 0 {
		dcpl["filters"] = filters
	}
	if fill, ok := misc["fillValue"]; ok {
		dcpl["fillValue"] = fill
	}
	return dcpl, nil
}

func deriveChunk(dims, maxdims, misc map[string]any) ([]any, error) {
	d, _ := dims["dims"].([]any)
	md, _ := maxdims["maxdims"].([]any)
	base := defaultBase
	if dt, ok := misc["datatype"].(map[string]any); ok {
		if b, ok := dt["base"].(string); ok {
			base = b
		}
	}
	itemSize, ok := h5json.ItemSize(base)
	if !ok {
		itemSize, _ = h5json.ItemSize(defaultBase)
	}
	chunk, err := GuessChunk(looseDims(d), looseDims(md), itemSize)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(chunk))
	for i, c := range chunk {
		out[i] = json.Number(fmt.Sprintf("%d", c))
	}
	return out, nil
}

// looseDims converts a decoded dims list to sizes, mapping the unlimited
// sentinel and anything unparseable to zero.
func looseDims(seq []any) []uint64 {
	out := make([]uint64, len(seq))
	for i, v := range seq {
		switch n := v.(type) {
		case json.Number:
			if u, err := n.Int64(); err == nil && u >= 0 {
				out[i] = uint64(u)
			}
		case float64:
			if n >= 0 {
				out[i] = uint64(n)
			}
		case int:
			if n >= 0 {
				out[i] = uint64(n)
			}
		case int64:
			if n >= 0 {
				out[i] = uint64(n)
			}
		}
	}
	return out
}

func emptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func encodeColumn(v map[string]any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeColumn(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
