package lql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which arm of Value is populated.
type Kind int

const (
	KString Kind = iota
	KInteger
	KFloat
	KBoolean
	KDate
	KDatetime
	KList
)

func (k Kind) String() string {
	switch k {
	case KString:
		return "string"
	case KInteger:
		return "integer"
	case KFloat:
		return "float"
	case KBoolean:
		return "boolean"
	case KDate:
		return "date"
	case KDatetime:
		return "datetime"
	case KList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DateLayout and DatetimeLayout are the two ISO-8601 forms recognized:
// a bare date, and a UTC "Z" datetime.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02T15:04:05Z"
)

// Value is a typed scalar (or, for list_includes, a list of scalars).
// Exactly one of the fields below is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time // Date and Datetime both use this; Date values are truncated to midnight UTC
	List  []Value
}

func Str(s string) Value          { return Value{Kind: KString, Str: s} }
func Int(i int64) Value           { return Value{Kind: KInteger, Int: i} }
func Flt(f float64) Value         { return Value{Kind: KFloat, Float: f} }
func Bln(b bool) Value            { return Value{Kind: KBoolean, Bool: b} }
func DateVal(t time.Time) Value   { return Value{Kind: KDate, Time: t} }
func DatetimeVal(t time.Time) Value { return Value{Kind: KDatetime, Time: t} }
func ListVal(vs []Value) Value    { return Value{Kind: KList, List: vs} }

// Num returns the numeric value widened to float64, for any numeric Kind.
// The second return value is false for non-numeric kinds.
func (v Value) Num() (float64, bool) {
	switch v.Kind {
	case KInteger:
		return float64(v.Int), true
	case KFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// String renders v for diagnostics and canonical serialization.
func (v Value) String() string {
	switch v.Kind {
	case KString:
		return v.Str
	case KInteger:
		return strconv.FormatInt(v.Int, 10)
	case KFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KBoolean:
		return strconv.FormatBool(v.Bool)
	case KDate:
		return v.Time.Format(DateLayout)
	case KDatetime:
		return v.Time.Format(DatetimeLayout)
	case KList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("<invalid value %#v>", v)
	}
}

// Equal reports whether v and other are the same typed value. The parser
// uses it to accept a range whose bounds are equal; the router's "="
// operator (valueEquals) applies the same rules to raw event values.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		// Integer and Float are allowed to compare equal across kinds:
		// cross-type (int vs float) comparisons widen to float64 first.
		vn, vok := v.Num()
		on, ook := other.Num()
		if vok && ook {
			return vn == on
		}
		return false
	}
	switch v.Kind {
	case KString:
		return v.Str == other.Str
	case KInteger:
		return v.Int == other.Int
	case KFloat:
		return v.Float == other.Float
	case KBoolean:
		return v.Bool == other.Bool
	case KDate, KDatetime:
		return v.Time.Equal(other.Time)
	case KList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Less orders two typed values; the parser uses it to check that a
// range's lower bound does not exceed its upper bound. Only numeric and
// temporal kinds are ordered; mismatched or non-orderable kinds report
// ok=false and the caller must treat the comparison as non-satisfying.
func (v Value) Less(other Value) (result, ok bool) {
	if v.Kind == KDate || v.Kind == KDatetime || other.Kind == KDate || other.Kind == KDatetime {
		if (v.Kind != KDate && v.Kind != KDatetime) || (other.Kind != KDate && other.Kind != KDatetime) {
			return false, false
		}
		return v.Time.Before(other.Time), true
	}
	vn, vok := v.Num()
	on, ook := other.Num()
	if vok && ook {
		return vn < on, true
	}
	return false, false
}

// parseDateOrDatetime attempts to parse raw as a date or datetime literal.
// Returns ok=false if raw matches neither ISO-8601 form.
func parseDateOrDatetime(raw string) (Value, bool) {
	if t, err := time.Parse(DatetimeLayout, raw); err == nil {
		return DatetimeVal(t.UTC()), true
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return DateVal(t.UTC()), true
	}
	return Value{}, false
}

// coerceNumber parses raw as an Integer or Float literal: optional
// leading '-', digits, optional '.' and fractional digits — a '.'
// forces Float.
func coerceNumber(raw string) (Value, bool) {
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, false
		}
		return Flt(f), true
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return Int(i), true
}

// coerceBool parses raw as a boolean literal ("true"/"false" only).
func coerceBool(raw string) (Value, bool) {
	switch raw {
	case "true":
		return Bln(true), true
	case "false":
		return Bln(false), true
	default:
		return Value{}, false
	}
}
