package lql

import "testing"

func TestSortSearchOrdersByOperatorThenPathThenValue(t *testing.T) {
	rules := []FilterRule{
		{Path: "b", Operator: OpEq, Value: Str("z")},
		{Path: "a", Operator: OpRegex, Value: Str("x")},
		{Path: "a", Operator: OpEq, Value: Str("y")},
	}
	sortSearch(rules)
	want := []FilterRule{
		{Path: "a", Operator: OpEq, Value: Str("y")},
		{Path: "b", Operator: OpEq, Value: Str("z")},
		{Path: "a", Operator: OpRegex, Value: Str("x")},
	}
	for i := range want {
		if !filterRuleEqual(rules[i], want[i]) {
			t.Fatalf("rules[%d] = %+v, want %+v (full: %+v)", i, rules[i], want[i], rules)
		}
	}
}

func filterRuleEqual(a, b FilterRule) bool {
	return a.Path == b.Path && a.Operator == b.Operator && a.Modifiers == b.Modifiers && a.Value.Equal(b.Value)
}

func TestSortSearchNegatedAfterNonNegated(t *testing.T) {
	rules := []FilterRule{
		{Path: "a", Operator: OpEq, Value: Str("x"), Modifiers: ModNegate},
		{Path: "a", Operator: OpEq, Value: Str("x")},
	}
	sortSearch(rules)
	if rules[0].Negated() || !rules[1].Negated() {
		t.Fatalf("rules = %+v, want non-negated before negated", rules)
	}
}

func TestSortSearchOrdersByValueWithinSameOperatorAndPath(t *testing.T) {
	rules := []FilterRule{
		{Path: "event_message", Operator: OpRegex, Value: Str("new")},
		{Path: "event_message", Operator: OpRegex, Value: Str("server")},
		{Path: "event_message", Operator: OpRegex, Value: Str("user sign up")},
	}
	sortSearch(rules)
	want := []string{"new", "server", "user sign up"}
	for i, r := range rules {
		if r.Value.Str != want[i] {
			t.Fatalf("rules[%d].Value = %q, want %q", i, r.Value.Str, want[i])
		}
	}
}
