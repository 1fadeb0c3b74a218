package h5json

// Merge recursively merges two nested mappings into a new map. Keys present
// in both sides merge recursively when both values are mappings; otherwise
// the value from b silently replaces the one from a. Neither input is
// mutated.
func Merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, av := range a {
		out[k] = av
	}
	for k, bv := range b {
		av, both := out[k]
		if both {
			am, aIsMap := av.(map[string]any)
			bm, bIsMap := bv.(map[string]any)
			if aIsMap && bIsMap {
				out[k] = Merge(am, bm)
				continue
			}
		}
		out[k] = bv
	}
	return out
}
