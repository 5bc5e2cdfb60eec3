package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Builder constructs a Schema from sample values and/or explicit type
// descriptors. Descriptors always win over inferred types for the same
// path, which lets callers pin down ambiguous samples (e.g. an empty
// list, or a numeric field that happens to look like a string sample).
type Builder struct {
	fields      map[string]Type
	descriptors map[string]Type
}

// NewBuilder returns an empty Builder. event_message and timestamp are
// seeded automatically; callers do not need to (and should not) supply
// samples for them.
func NewBuilder() *Builder {
	return &Builder{
		fields:      make(map[string]Type),
		descriptors: make(map[string]Type),
	}
}

// WithSamples merges a nested map of sample values into the builder,
// inferring a Type for each leaf path. Nested maps become Object-typed
// interior nodes and are recursed into, contributing their own leaf
// paths rather than a single Object leaf.
//
// Type inference:
//   - whole-number sample (float64 with no fractional part, or int) -> Integer
//   - any sample containing a decimal point -> Float
//   - true/false -> Boolean
//   - a list -> List<T>, typed by its first element (empty list -> List<String>)
//   - nested map -> recursed into, not itself a leaf
//   - anything else -> String
func (b *Builder) WithSamples(prefix string, samples map[string]any) *Builder {
	for k, v := range samples {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		b.addSample(path, v)
	}
	return b
}

func (b *Builder) addSample(path string, v any) {
	switch val := v.(type) {
	case map[string]any:
		b.fields[path] = Type{Kind: Object}
		b.WithSamples(path, val)
	case []any:
		elem := String
		if len(val) > 0 {
			elem = inferScalarKind(val[0])
		}
		b.fields[path] = Type{Kind: List, Elem: elem}
	default:
		b.fields[path] = Type{Kind: inferScalarKind(v)}
	}
}

func inferScalarKind(v any) Kind {
	switch val := v.(type) {
	case bool:
		return Boolean
	case int, int32, int64:
		return Integer
	case float64:
		if val == float64(int64(val)) {
			return Integer
		}
		return Float
	case float32:
		return Float
	case string:
		if looksLikeDecimal(val) {
			return Float
		}
		if val == "true" || val == "false" {
			return Boolean
		}
		return String
	default:
		return String
	}
}

// looksLikeDecimal reports whether s parses as a number with a decimal
// point, the signal used to force float over integer. Strings that
// merely contain a '.' without being numeric (emails, hostnames,
// UUIDs) are left as String.
func looksLikeDecimal(s string) bool {
	if !strings.Contains(s, ".") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// WithType sets an explicit descriptor for path, overriding any sample
// inference for that exact path.
func (b *Builder) WithType(path string, t Type) *Builder {
	b.descriptors[path] = t
	return b
}

// WithTypes merges a map of explicit descriptors.
func (b *Builder) WithTypes(descriptors map[string]Type) *Builder {
	for path, t := range descriptors {
		b.descriptors[path] = t
	}
	return b
}

// Build finalizes the Schema, applying descriptors over inferred fields
// and seeding the two system paths.
func (b *Builder) Build() Schema {
	fields := make(map[string]Type, len(b.fields)+len(b.descriptors)+2)
	for path, t := range b.fields {
		fields[path] = t
	}
	for path, t := range b.descriptors {
		fields[path] = t
	}
	fields[EventMessagePath] = Type{Kind: String}
	fields[TimestampPath] = Type{Kind: Datetime}

	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return Schema{fields: fields, paths: paths}
}
