// Package lql implements the LQL (log query language) parser: a
// compact, schema-aware text syntax that compiles to a RuleSet of
// FilterRule/ChartRule values consumed by the router evaluator.
//
// Grammar (informal; LQL intentionally has no nesting or disjunction):
// a query is a sequence of whitespace-separated terms.
//
//	query   = term*
//	term    = [ "-" ] ( quoted | chart_dir | kv_term | word )
//	chart_dir = "chart" ":" path
//	kv_term = path ":" rhs
//	rhs     = "~" pattern | cmp_op value | value ".." value | value
//	cmp_op  = "<" | "<=" | ">" | ">="
//	word    = bareword up to whitespace  (free-text search, operator ~)
//	quoted  = '"' ... '"' | "'" ... "'"  (free-text search, operator ~)
//
// Parsing is schema-aware: path resolution and value coercion against
// the supplied schema.Schema happen inline, so the parser either
// succeeds with a fully typed RuleSet or fails fast with the first
// error encountered.
package lql

import (
	"strings"

	"logroute/internal/schema"
)

// Parse parses query into a RuleSet, validating and typing every path
// against s. Returns the first error encountered; no partial RuleSet
// is ever returned alongside an error.
func Parse(query string, s schema.Schema) (RuleSet, error) {
	p := &parser{lex: NewLexer(query), schema: s}
	return p.parse()
}

type parser struct {
	lex    *Lexer
	schema schema.Schema
}

func (p *parser) parse() (RuleSet, error) {
	var search []FilterRule
	var chart []ChartRule

	for !p.lex.AtEOF() {
		negate := false
		if b, ok := p.lex.Peek(); ok && b == '-' {
			// Only a term-leading '-' is negation; a '-' that begins a
			// numeric literal is consumed later, inside value scanning,
			// never reached here because term boundaries start after
			// whitespace.
			p.lex.Advance(1)
			negate = true
		}

		b, ok := p.lex.Peek()
		if !ok {
			return RuleSet{}, newParseError(ErrTokenization, "dangling '-' at end of query")
		}

		if b == '"' || b == '\'' {
			phrase, ok := p.lex.ReadQuoted()
			if !ok {
				return RuleSet{}, newParseError(ErrTokenization, "unterminated quoted string")
			}
			f := FilterRule{Path: schema.EventMessagePath, Operator: OpRegex, Value: Str(phrase)}
			if negate {
				f.Modifiers |= ModNegate
			}
			search = append(search, f)
			continue
		}

		head := p.lex.ReadHead()
		if head == "" {
			return RuleSet{}, newParseError(ErrTokenization, "unexpected character %q at position %d", b, p.lex.Pos())
		}

		nb, hasNext := p.lex.Peek()
		if !hasNext || nb != ':' {
			// Bare free-text word: search on event_message.
			f := FilterRule{Path: schema.EventMessagePath, Operator: OpRegex, Value: Str(head)}
			if negate {
				f.Modifiers |= ModNegate
			}
			search = append(search, f)
			continue
		}

		p.lex.Advance(1) // consume ':'

		if head == "chart" {
			cr, err := p.parseChart()
			if err != nil {
				return RuleSet{}, err
			}
			chart = []ChartRule{cr} // at most one; later directives overwrite
			continue
		}

		filters, err := p.parsePathTerm(head)
		if err != nil {
			return RuleSet{}, err
		}
		if negate {
			for i := range filters {
				filters[i].Modifiers |= ModNegate
			}
		}
		search = append(search, filters...)
	}

	sortSearch(search)
	return RuleSet{Search: search, Chart: chart}, nil
}

func (p *parser) parseChart() (ChartRule, error) {
	path := p.lex.ReadValueToken()
	if path == "" {
		return ChartRule{}, newParseError(ErrTokenization, "chart: requires a field path")
	}
	typ, known := p.resolvePath(path)
	if !known {
		return ChartRule{}, p.unknownFieldError(path)
	}
	if !typ.IsNumeric() {
		return ChartRule{}, newParseError(ErrOperatorType,
			"chart field %q must be numeric, got %s", path, typ)
	}
	vt := KInteger
	if typ.Kind == schema.Float {
		vt = KFloat
	}
	return ChartRule{Path: path, ValueType: vt}, nil
}

// parsePathTerm parses the "rhs" of a "path:" term: an operator-qualified
// value, a range, a regex, or a bare implicit-equality value.
func (p *parser) parsePathTerm(path string) ([]FilterRule, error) {
	typ, known := p.resolvePath(path)
	dynamic := !known && isMetadataPath(path)
	if !known && !dynamic {
		return nil, p.unknownFieldError(path)
	}

	b, ok := p.lex.Peek()
	if ok && b == '~' {
		p.lex.Advance(1)
		pattern, err := p.readValueOrQuoted()
		if err != nil {
			return nil, err
		}
		if known && !(typ.Kind == schema.String || (typ.Kind == schema.List && typ.Elem == schema.String)) {
			return nil, newParseError(ErrOperatorType,
				"cannot use ~ operator on %q (type %s); ~ requires a string field", path, typ)
		}
		return []FilterRule{{Path: path, Operator: OpRegex, Value: Str(pattern)}}, nil
	}

	if op, consumed := p.peekCompareOp(); consumed > 0 {
		p.lex.Advance(consumed)
		raw, err := p.readValueOrQuoted()
		if err != nil {
			return nil, err
		}
		if known && !(typ.IsNumeric() || typ.IsTemporal()) {
			return nil, newParseError(ErrOperatorType,
				"cannot use %s operator on %q (type %s); comparison requires a numeric or temporal field", op, path, typ)
		}
		val, err := p.coerceValue(path, typ, known, raw)
		if err != nil {
			return nil, err
		}
		return []FilterRule{{Path: path, Operator: op, Value: val}}, nil
	}

	raw, quoted, err := p.readRawValueToken()
	if err != nil {
		return nil, err
	}

	if !quoted {
		if lo, hi, isRange := splitRange(raw); isRange {
			loVal, err := p.coerceValue(path, typ, known, lo)
			if err != nil {
				return nil, err
			}
			hiVal, err := p.coerceValue(path, typ, known, hi)
			if err != nil {
				return nil, err
			}
			less, orderable := loVal.Less(hiVal)
			if !orderable {
				return nil, newParseError(ErrRangeInvalid,
					"range bounds %q..%q on %q are not comparable", lo, hi, path)
			}
			if !less && !loVal.Equal(hiVal) {
				return nil, newParseError(ErrRangeInvalid,
					"invalid range on %q: lower bound %q is greater than upper bound %q", path, lo, hi)
			}
			return []FilterRule{
				{Path: path, Operator: OpGte, Value: loVal},
				{Path: path, Operator: OpLte, Value: hiVal},
			}, nil
		}
	}

	// Implicit operator: list_includes for list-typed paths, else equality.
	if known && typ.Kind == schema.List {
		elemVal, err := p.coerceScalar(path, schema.Type{Kind: typ.Elem}, true, raw)
		if err != nil {
			return nil, err
		}
		return []FilterRule{{Path: path, Operator: OpListIncludes, Value: elemVal}}, nil
	}

	val, err := p.coerceValue(path, typ, known, raw)
	if err != nil {
		return nil, err
	}
	return []FilterRule{{Path: path, Operator: OpEq, Value: val}}, nil
}

// readValueOrQuoted reads a single value (quoted phrase or bareword
// token) without attempting range detection; used for regex patterns
// and comparison-operator operands, neither of which support ranges.
func (p *parser) readValueOrQuoted() (string, error) {
	raw, _, err := p.readRawValueToken()
	return raw, err
}

// readRawValueToken reads either a quoted phrase or a bareword value
// token at the current position. The bool result reports whether the
// token was quoted (quoted tokens never undergo range splitting).
func (p *parser) readRawValueToken() (string, bool, error) {
	b, ok := p.lex.Peek()
	if ok && (b == '"' || b == '\'') {
		s, ok := p.lex.ReadQuoted()
		if !ok {
			return "", false, newParseError(ErrTokenization, "unterminated quoted string")
		}
		return s, true, nil
	}
	return p.lex.ReadValueToken(), false, nil
}

// peekCompareOp checks for <, <=, >, >= at the current position and
// returns the Operator plus how many bytes to consume, or consumed=0
// if no comparison operator is present.
func (p *parser) peekCompareOp() (Operator, int) {
	b, ok := p.lex.Peek()
	if !ok {
		return 0, 0
	}
	switch b {
	case '<':
		if nb, ok := p.lex.PeekAt(1); ok && nb == '=' {
			return OpLte, 2
		}
		return OpLt, 1
	case '>':
		if nb, ok := p.lex.PeekAt(1); ok && nb == '=' {
			return OpGte, 2
		}
		return OpGt, 1
	default:
		return 0, 0
	}
}

// resolvePath resolves path against the schema.
func (p *parser) resolvePath(path string) (schema.Type, bool) {
	return p.schema.Resolve(path)
}

// isMetadataPath reports whether path falls in the dynamically-typed
// metadata namespace, where fields absent from the schema are inferred
// from the literal query value rather than rejected outright: metadata
// is free-form per source, so the schema can lag behind what a query
// author already knows a field holds.
func isMetadataPath(path string) bool {
	return strings.HasPrefix(path, "metadata.")
}

func (p *parser) unknownFieldError(path string) error {
	suggestions := p.schema.Suggest(path, 3)
	if len(suggestions) == 0 {
		return newParseError(ErrUnknownField, "Unknown field `%s`", path)
	}
	return newParseError(ErrUnknownField, "Unknown field `%s`; did you mean one of: %s?",
		path, strings.Join(suggestions, ", "))
}

// coerceValue coerces raw into a typed Value for path. known=false means
// the path is a dynamically-typed metadata field absent from the
// schema; its type is inferred from raw itself. path=="timestamp"
// always gets the dedicated timestamp error message.
func (p *parser) coerceValue(path string, typ schema.Type, known bool, raw string) (Value, error) {
	if path == schema.TimestampPath {
		// Range bounds arrive here already split by parsePathTerm, one
		// bound per call, so raw is always a single literal.
		v, ok := parseDateOrDatetime(raw)
		if !ok {
			return Value{}, p.timestampError(raw)
		}
		return v, nil
	}
	return p.coerceScalar(path, typ, known, raw)
}

func (p *parser) timestampError(raw string) error {
	return newParseError(ErrTimestampParse,
		"Error while parsing timestamp filter value: expected ISO8601 string or range, got %s", raw)
}

// coerceScalar coerces raw to typ's Kind (known=true), or infers a
// scalar type from raw itself (known=false, dynamic metadata field).
func (p *parser) coerceScalar(path string, typ schema.Type, known bool, raw string) (Value, error) {
	if known {
		switch typ.Kind {
		case schema.String:
			return Str(raw), nil
		case schema.Integer, schema.Float:
			v, ok := coerceNumber(raw)
			if !ok {
				return Value{}, p.valueError(path, raw)
			}
			if typ.Kind == schema.Float && v.Kind == KInteger {
				v = Flt(float64(v.Int))
			}
			return v, nil
		case schema.Boolean:
			v, ok := coerceBool(raw)
			if !ok {
				return Value{}, p.valueError(path, raw)
			}
			return v, nil
		case schema.Date, schema.Datetime:
			v, ok := parseDateOrDatetime(raw)
			if !ok {
				return Value{}, p.valueError(path, raw)
			}
			return v, nil
		case schema.Object:
			return Value{}, newParseError(ErrOperatorType,
				"cannot filter on %q: it is an object-typed path, not a leaf field", path)
		default:
			return Str(raw), nil
		}
	}

	// Dynamic metadata field: infer type from the literal itself.
	if raw == "" {
		return Value{}, p.valueError(path, raw)
	}
	if v, ok := coerceBool(raw); ok {
		return v, nil
	}
	if v, ok := parseDateOrDatetime(raw); ok {
		return v, nil
	}
	if v, ok := coerceNumber(raw); ok {
		return v, nil
	}
	return Str(raw), nil
}

func (p *parser) valueError(path, raw string) error {
	return newParseError(ErrValueParse,
		"Error while parsing `%s` field metadata filter value: %q", path, raw)
}

// splitRange splits raw on the first ".." into lo, hi, reporting
// isRange=false if no ".." separator is present.
func splitRange(raw string) (lo, hi string, isRange bool) {
	idx := strings.Index(raw, "..")
	if idx < 0 {
		return "", "", false
	}
	return raw[:idx], raw[idx+2:], true
}
