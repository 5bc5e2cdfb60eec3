package router

import "logroute/internal/lql"

// Matches evaluates a single FilterRule against event. The result is
// total (always returns a bool, never panics) and combines the raw
// operator match with negation via XOR: a negated rule on a path that
// is entirely absent from event is satisfied, since "not present" is a
// valid way to not-match a positive predicate.
func Matches(event Event, rule lql.FilterRule, cache *RegexCache) bool {
	return matchRule(event, rule, cache) != rule.Negated()
}

func matchRule(event Event, rule lql.FilterRule, cache *RegexCache) bool {
	candidates := Extract(event, rule.Path)

	if rule.Operator == lql.OpListIncludes {
		for _, c := range candidates {
			if listIncludes(c, rule.Value) {
				return true
			}
		}
		return false
	}

	for _, leaf := range flattenLeaves(candidates) {
		if evalOperator(rule.Operator, leaf, rule.Value, cache) {
			return true
		}
	}
	return false
}

// MatchesAll reports whether event satisfies every rule in rules. An
// empty rule list matches everything.
func MatchesAll(event Event, rules []lql.FilterRule, cache *RegexCache) bool {
	for _, rule := range rules {
		if !Matches(event, rule, cache) {
			return false
		}
	}
	return true
}
