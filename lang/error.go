package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrLex                         = NewError("no token matches input")
	ErrUnexpectedToken             = NewError("unexpected token")
	ErrExpectedToken               = NewError("expected token")
	ErrUnknownIdentifier           = NewError("unknown identifier")
	ErrNotInteger                  = NewError("identifier is not an integer")
	ErrInsufficientOperands        = NewError("insufficient operands")
	ErrMalformedExpression         = NewError("expression did not reduce to a single result")
	ErrUnexpectedTokenInExpression = NewError("unexpected token in expression")
	ErrDivisionByZero              = NewError("division by zero")
	ErrIntegerOverflow             = NewError("integer overflow")
	ErrInvalidNumber               = NewError("invalid number")
	ErrMaxDepthExceeded            = NewError("maximum nesting depth exceeded")
	ErrReadInput                   = NewError("failed to read input")
	ErrMarshal                     = NewError("marshal error")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel via [Error.With], [Error.Wrap] or
// [Error.WithPosition] still match that sentinel with [errors.Is].
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	origin *Error      // Sentinel this error was derived from
	pos    *Position
	source string
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if detail := e.detail(); detail != "" {
		part = append(part, detail)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	msg := strings.Join(part, ": ")

	if e.pos != nil {
		msg = "line " + strconv.Itoa(e.pos.Line) +
			", column " + strconv.Itoa(e.pos.Column) + ": " + msg
	}

	return msg
}

// detail renders the attributes that identify the offending token or name.
func (e *Error) detail() string {
	var part []string

	for _, a := range e.attrs {
		switch a.Key {
		case "kind", "expected", "found", "name", "literal":
			part = append(part, a.Key+"="+a.Value.String())
		}
	}

	return strings.Join(part, " ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.origin != nil && e.origin == t.root())
}

func (e *Error) root() *Error {
	if e.origin != nil {
		return e.origin
	}

	return e
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("offset", e.pos.Offset),
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// clone returns a shallow copy of e that remembers its sentinel.
func (e *Error) clone() *Error {
	c := *e
	c.origin = e.root()

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = &pos

	return c
}

// WithSource attaches the complete source text so that [Error.Snippet] can
// render the offending line.
func (e *Error) WithSource(source string) *Error {
	c := e.clone()
	c.source = source

	return c
}

// Snippet renders the source line containing the error position with a caret
// marking the column. It returns the empty string if either the position or
// the source is unknown.
func (e *Error) Snippet() string {
	if e.pos == nil || e.source == "" {
		return ""
	}

	lines := strings.Split(e.source, "\n")
	if e.pos.Line < 1 || e.pos.Line > len(lines) {
		return ""
	}

	var buf strings.Builder

	num := strconv.Itoa(e.pos.Line)

	buf.WriteString("  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(lines[e.pos.Line-1])
	buf.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.pos.Column > 0 {
		padding += strings.Repeat(" ", e.pos.Column-1)
	}

	buf.WriteString(padding)
	buf.WriteString("^\n")

	return buf.String()
}
