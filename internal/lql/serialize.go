package lql

import "strings"

// Serialize renders a RuleSet back to LQL surface syntax. The output is
// canonical: re-parsing it against the same schema always yields an
// equal RuleSet, and two RuleSets that are Equal-by-value always
// serialize to the same string. The rendering is not guaranteed to
// match whatever surface text originally produced the RuleSet — free-
// text terms and ranges are not reconstructed as such, only as
// explicit path:op value tokens.
func Serialize(rs RuleSet) string {
	tokens := make([]string, 0, len(rs.Search)+len(rs.Chart))
	for _, f := range rs.Search {
		tokens = append(tokens, serializeFilter(f))
	}
	for _, c := range rs.Chart {
		tokens = append(tokens, "chart:"+c.Path)
	}
	return strings.Join(tokens, " ")
}

func serializeFilter(f FilterRule) string {
	var sb strings.Builder
	if f.Negated() {
		sb.WriteByte('-')
	}
	if f.Path == "event_message" && f.Operator == OpRegex {
		sb.WriteString(quoteIfNeeded(f.Value.String(), true))
		return sb.String()
	}
	sb.WriteString(f.Path)
	sb.WriteByte(':')
	switch f.Operator {
	case OpEq, OpListIncludes:
		// implicit operator, no token
	case OpRegex:
		sb.WriteByte('~')
	default:
		sb.WriteString(f.Operator.String())
	}
	sb.WriteString(quoteIfNeeded(f.Value.String(), false))
	return sb.String()
}

// quoteIfNeeded wraps s in double quotes, escaping embedded backslashes
// and double quotes, whenever re-parsing s bare would not give back the
// same single value: s is empty, contains whitespace, or starts with a
// quote character; for a free-text term also when s contains ':' (it
// would read as a path:value term) or starts with '-' (negation); for a
// path value also when s contains ".." (a range) or starts with '~',
// '<' or '>' (an operator).
func quoteIfNeeded(s string, freeText bool) string {
	plain := s != "" && !strings.ContainsAny(s, " \t\n\r") && !strings.ContainsAny(s[:1], `"'`)
	if freeText {
		plain = plain && !strings.Contains(s, ":") && s[0] != '-'
	} else {
		plain = plain && !strings.Contains(s, "..") && !strings.ContainsAny(s[:1], "~<>")
	}
	if plain {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}
