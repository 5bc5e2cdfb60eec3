package lql

import (
	"errors"
	"fmt"
)

// Sentinel error classes, grouped by category. The parser always
// surfaces a single flat error string to the caller, but keeps these
// wrapped via ParseError.Unwrap so callers that care can still branch
// with errors.Is.
var (
	ErrTokenization   = errors.New("tokenization error")
	ErrUnknownField   = errors.New("unknown field")
	ErrValueParse     = errors.New("value parse error")
	ErrRangeInvalid   = errors.New("range error")
	ErrTimestampParse = errors.New("timestamp error")
	ErrOperatorType   = errors.New("operator/type mismatch")
)

// ParseError carries a formatted message plus the sentinel class, so
// wrapping (fmt.Errorf("%w: ...")) and errors.Is both work while the
// public Parse contract still returns a plain error.
type ParseError struct {
	Err     error
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(class error, format string, args ...any) *ParseError {
	return &ParseError{Err: class, Message: fmt.Sprintf(format, args...)}
}
