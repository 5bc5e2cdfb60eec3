package lql

import "sort"

// sortSearch imposes the canonical total order on a RuleSet's Search
// filters: (Operator, Path, Value string form), with negated rules
// sorting after otherwise-identical non-negated ones. This makes
// Parse deterministic regardless of the order terms appeared in the
// query, so equivalent queries produce byte-identical RuleSets.
//
// This order does not consistently match either ascending or
// descending value comparison on its own; it follows the explicit,
// testable three-key invariant instead, which is unambiguous regardless
// of the operator and value types involved.
func sortSearch(rules []FilterRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Operator != b.Operator {
			return a.Operator < b.Operator
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		av, bv := a.Value.String(), b.Value.String()
		if av != bv {
			return av < bv
		}
		return !a.Negated() && b.Negated()
	})
}
