// Package schema provides the in-memory representation of a table schema:
// the set of known field paths and their semantic types.
//
// A Schema is consumed by the lql parser for path validation and value
// coercion. It never changes once built — Builder produces an immutable
// Schema value that can be shared across concurrent parses.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the semantic type of a schema field.
type Kind int

const (
	String Kind = iota
	Integer
	Float
	Boolean
	Date
	Datetime
	List
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case Datetime:
		return "datetime"
	case List:
		return "list"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is the full type of a field: a Kind, plus an element Kind when
// Kind is List (lists only ever hold scalars in this schema model).
type Type struct {
	Kind Kind
	Elem Kind // only meaningful when Kind == List
}

func (t Type) String() string {
	if t.Kind == List {
		return "list<" + t.Elem.String() + ">"
	}
	return t.Kind.String()
}

// IsNumeric reports whether t can participate in numeric comparisons.
func (t Type) IsNumeric() bool {
	return t.Kind == Integer || t.Kind == Float
}

// IsTemporal reports whether t is a date or datetime.
func (t Type) IsTemporal() bool {
	return t.Kind == Date || t.Kind == Datetime
}

// EventMessagePath and TimestampPath are the two system paths present
// in every schema, regardless of what the caller's samples contain.
const (
	EventMessagePath = "event_message"
	TimestampPath    = "timestamp"
)

// Schema is an immutable set of fully-qualified dotted field paths to
// their semantic Type. Two system paths are always present:
// event_message (string) and timestamp (datetime).
type Schema struct {
	fields map[string]Type
	paths  []string // sorted, cached for Paths()
}

// Resolve looks up the type of a field path. The second return value is
// false if path is not known to the schema.
func (s Schema) Resolve(path string) (Type, bool) {
	t, ok := s.fields[path]
	return t, ok
}

// IsNumeric reports whether path resolves to a numeric type.
func (s Schema) IsNumeric(path string) bool {
	t, ok := s.fields[path]
	return ok && t.IsNumeric()
}

// IsTemporal reports whether path resolves to a date or datetime type.
func (s Schema) IsTemporal(path string) bool {
	t, ok := s.fields[path]
	return ok && t.IsTemporal()
}

// IsString reports whether path resolves to a string type.
func (s Schema) IsString(path string) bool {
	t, ok := s.fields[path]
	return ok && t.Kind == String
}

// IsList reports whether path resolves to a list type.
func (s Schema) IsList(path string) bool {
	t, ok := s.fields[path]
	return ok && t.Kind == List
}

// Paths returns every known field path in sorted order. Used by the
// parser to suggest near-matches when an unknown path is referenced.
func (s Schema) Paths() []string {
	return s.paths
}

// Suggest returns up to n known paths most likely to be a typo target
// for path, ranked by Levenshtein distance (ties broken alphabetically).
func (s Schema) Suggest(path string, n int) []string {
	type scored struct {
		path string
		dist int
	}
	candidates := make([]scored, 0, len(s.paths))
	for _, p := range s.paths {
		candidates = append(candidates, scored{p, levenshtein(path, p)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].path < candidates[j].path
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].path
	}
	return out
}

// levenshtein computes the edit distance between a and b. Schemas are
// small (tens to low hundreds of paths) so the classic O(len(a)*len(b))
// table is fine; this is never on a hot path.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// String renders the schema as a sorted "path: type" listing, useful for
// debugging.
func (s Schema) String() string {
	var sb strings.Builder
	for i, p := range s.paths {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p)
		sb.WriteString(": ")
		sb.WriteString(s.fields[p].String())
	}
	return sb.String()
}
