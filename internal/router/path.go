package router

import "strings"

// Extract resolves a dotted path against event, returning every value
// found at that path. Most paths resolve to at most one candidate, but
// when an intermediate segment is a list of objects, the path fans out
// existentially: each object in the list is walked independently, and
// every match it produces is returned. This mirrors how a document
// store answers "does any element of this array have field X".
//
// A path segment that cannot be resolved (missing key, or a non-object
// encountered where a further descent is required) simply contributes
// no candidates; Extract never errors.
func Extract(event Event, path string) []any {
	return walk(map[string]any(event), strings.Split(path, "."))
}

func walk(doc any, segments []string) []any {
	if len(segments) == 0 {
		return []any{doc}
	}
	switch v := doc.(type) {
	case map[string]any:
		child, ok := v[segments[0]]
		if !ok {
			return nil
		}
		return walk(child, segments[1:])
	case []any:
		var out []any
		for _, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, walk(m, segments)...)
		}
		return out
	default:
		return nil
	}
}

// flattenLeaves expands any candidate that is itself a list ([]any)
// into its elements. Used by every operator except list_includes,
// which checks list membership directly instead of flattening: a
// list-typed field is compared element-wise for list_includes,
// existentially for every other operator.
func flattenLeaves(candidates []any) []any {
	var out []any
	for _, c := range candidates {
		if list, ok := c.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, c)
	}
	return out
}
