package lql

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	s := testSchema()
	rs, err := Parse("metadata.users.source_count:50..200 -metadata.active:true chart:metadata.count", s)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	text := Serialize(rs)
	reparsed, err := Parse(text, s)
	if err != nil {
		t.Fatalf("Parse(Serialize(rs)) error = %v, text = %q", err, text)
	}
	if len(reparsed.Search) != len(rs.Search) {
		t.Fatalf("round-tripped Search length = %d, want %d (text = %q)", len(reparsed.Search), len(rs.Search), text)
	}
	if len(reparsed.Chart) != len(rs.Chart) || reparsed.Chart[0].Path != rs.Chart[0].Path {
		t.Fatalf("round-tripped Chart = %+v, want %+v", reparsed.Chart, rs.Chart)
	}
}

func TestSerializeQuotesValuesWithSpaces(t *testing.T) {
	rs := RuleSet{Search: []FilterRule{
		{Path: "event_message", Operator: OpRegex, Value: Str("user sign up")},
	}}
	got := Serialize(rs)
	want := `"user sign up"`
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeNegationPrefix(t *testing.T) {
	rs := RuleSet{Search: []FilterRule{
		{Path: "metadata.active", Operator: OpEq, Value: Bln(true), Modifiers: ModNegate},
	}}
	got := Serialize(rs)
	want := "-metadata.active:true"
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeStableForEqualRuleSets(t *testing.T) {
	rs := RuleSet{Search: []FilterRule{
		{Path: "metadata.ratio", Operator: OpGte, Value: Flt(0.5)},
	}}
	a := Serialize(rs)
	b := Serialize(rs)
	if a != b {
		t.Fatalf("Serialize() not stable: %q vs %q", a, b)
	}
}
