package lql

import "strings"

// Lexer is a low-level, position-based scanner over a query string.
// Unlike a classical token-stream lexer, LQL's grammar is a flat
// sequence of whitespace-separated terms (no nesting, no precedence),
// so the scanner exposes term-shaped primitives directly: skipping
// whitespace, reading a "head" (path or bare word, stopping at ':'),
// reading a value token (stopping only at whitespace, so embedded
// colons in e.g. ISO-8601 timestamps survive), and reading quoted
// phrases. This keeps parsing linear in input length with no
// backtracking.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Pos returns the current byte offset, used for error messages.
func (l *Lexer) Pos() int { return l.pos }

// AtEOF reports whether the scanner has consumed all input.
func (l *Lexer) AtEOF() bool {
	l.SkipWhitespace()
	return l.pos >= len(l.input)
}

// SkipWhitespace advances past spaces, tabs, and line breaks.
// Whitespace and line breaks are interchangeable term separators.
func (l *Lexer) SkipWhitespace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// Peek returns the current byte without consuming it, and false if at EOF.
func (l *Lexer) Peek() (byte, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos], true
}

// PeekAt returns the byte offset bytes ahead of pos, and false if out of range.
func (l *Lexer) PeekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.input) {
		return 0, false
	}
	return l.input[idx], true
}

// Advance consumes n bytes.
func (l *Lexer) Advance(n int) { l.pos += n }

// ReadHead reads a bareword up to whitespace or ':', used to recognize
// the path/keyword position at the start of a term (e.g. "metadata.a.b"
// in "metadata.a.b:5", or "chart" in "chart:metadata.count").
func (l *Lexer) ReadHead() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isSpace(ch) || ch == ':' {
			break
		}
		l.pos++
	}
	return l.input[start:l.pos]
}

// ReadValueToken reads a bareword value up to the next whitespace only,
// so colons (ISO-8601 times) and dots (floats, ranges, IP-shaped
// strings) pass through untouched.
func (l *Lexer) ReadValueToken() string {
	start := l.pos
	for l.pos < len(l.input) && !isSpace(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

// ReadQuoted reads a quoted phrase starting at the current position
// (which must be '"' or '\''), consuming both delimiters and
// processing backslash escapes for the quote character itself, a
// literal backslash, and common whitespace escapes. Returns the
// unescaped content and true, or false if unterminated.
func (l *Lexer) ReadQuoted() (string, bool) {
	quote := l.input[l.pos]
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			l.pos++ // closing quote
			return sb.String(), true
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case '\\', quote:
				sb.WriteByte(next)
				l.pos += 2
				continue
			case 'n':
				sb.WriteByte('\n')
				l.pos += 2
				continue
			case 't':
				sb.WriteByte('\t')
				l.pos += 2
				continue
			}
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return "", false
}
