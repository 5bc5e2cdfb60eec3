package router

import (
	"fmt"
	"time"

	"logroute/internal/lql"
)

// evalOperator applies a single FilterRule's operator to one extracted
// leaf value. It never panics and never errors: an incomparable raw
// value (wrong JSON type, unparseable timestamp string, malformed
// regex) simply yields false, per the evaluator's total, non-throwing
// contract.
func evalOperator(op lql.Operator, raw any, target lql.Value, cache *RegexCache) bool {
	switch op {
	case lql.OpEq:
		return valueEquals(raw, target)
	case lql.OpNeq:
		return !valueEquals(raw, target)
	case lql.OpLt, lql.OpLte, lql.OpGt, lql.OpGte:
		return compareOrdered(op, raw, target)
	case lql.OpRegex:
		return compareRegex(raw, target.Str, cache)
	default:
		return false
	}
}

// listIncludes reports whether candidate (the raw value found at a
// list_includes filter's path, not yet flattened) contains an element
// equal to target. A candidate that isn't itself a list is treated as
// a one-element list, so a schema mismatch degrades gracefully instead
// of erroring.
func listIncludes(candidate any, target lql.Value) bool {
	list, ok := candidate.([]any)
	if !ok {
		return valueEquals(candidate, target)
	}
	for _, elem := range list {
		if valueEquals(elem, target) {
			return true
		}
	}
	return false
}

// valueEquals compares a raw document value against a typed filter
// value, widening numeric types the same way lql.Value.Equal does.
func valueEquals(raw any, target lql.Value) bool {
	switch target.Kind {
	case lql.KString:
		s, ok := raw.(string)
		return ok && s == target.Str
	case lql.KInteger, lql.KFloat:
		n, ok := rawNumber(raw)
		tn, _ := target.Num()
		return ok && n == tn
	case lql.KBoolean:
		b, ok := raw.(bool)
		return ok && b == target.Bool
	case lql.KDate, lql.KDatetime:
		t, ok := rawTime(raw)
		return ok && t.Equal(target.Time)
	default:
		return false
	}
}

// compareOrdered evaluates <, <=, >, >= between raw and target.
func compareOrdered(op lql.Operator, raw any, target lql.Value) bool {
	var less, equal, ok bool
	switch target.Kind {
	case lql.KInteger, lql.KFloat:
		n, nok := rawNumber(raw)
		tn, _ := target.Num()
		ok = nok
		less = n < tn
		equal = n == tn
	case lql.KDate, lql.KDatetime:
		t, tok := rawTime(raw)
		ok = tok
		less = t.Before(target.Time)
		equal = t.Equal(target.Time)
	default:
		return false
	}
	if !ok {
		return false
	}
	switch op {
	case lql.OpLt:
		return less
	case lql.OpLte:
		return less || equal
	case lql.OpGt:
		return !less && !equal
	case lql.OpGte:
		return !less
	default:
		return false
	}
}

// compareRegex matches against the string form of raw: a regex targets
// whatever text the value would render as, not just values that happen
// to already be Go strings. A raw []any (a list path) has no single
// string form and never matches.
func compareRegex(raw any, pattern string, cache *RegexCache) bool {
	s, ok := raw.(string)
	if !ok {
		if _, isList := raw.([]any); isList {
			return false
		}
		s = fmt.Sprint(raw)
	}
	re, err := cache.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// rawNumber widens a decoded JSON number (always float64 from
// encoding/json) or a programmatically-constructed int/int64 into a
// float64.
func rawNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// rawTime accepts either a time.Time (programmatic Event construction)
// or a string in one of lql's two recognized ISO-8601 layouts (decoded
// JSON events, where timestamps are always strings).
func rawTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(lql.DatetimeLayout, v); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(lql.DateLayout, v); err == nil {
			return t.UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
