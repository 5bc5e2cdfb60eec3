package lql

// Operator identifies a FilterRule's comparison. Encodings are stable
// string tokens (see serialize.go) because RuleSets round-trip through
// external storage.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpRegex
	OpListIncludes
)

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNeq:
		return "<>"
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpRegex:
		return "~"
	case OpListIncludes:
		return "list_includes"
	default:
		return "?"
	}
}

// Modifier is a bit set of flags on a FilterRule. Negate is currently
// the only member.
type Modifier uint8

const (
	ModNegate Modifier = 1 << iota
)

// FilterRule is a single predicate: path/operator/value/modifiers.
type FilterRule struct {
	Path      string
	Operator  Operator
	Value     Value
	Modifiers Modifier
}

// Negated reports whether the negate modifier is set.
func (f FilterRule) Negated() bool {
	return f.Modifiers&ModNegate != 0
}

// ChartRule is the optional chart: directive. At most one per RuleSet.
type ChartRule struct {
	Path      string
	ValueType Kind   // always KInteger or KFloat
	Agg       string // opaque aggregation hint, empty if unset
	Period    string // opaque period hint, empty if unset
}

// RuleSet is the parsed output of Parse: an ordered filter list and an
// optional chart directive.
type RuleSet struct {
	Search []FilterRule
	Chart  []ChartRule
}
