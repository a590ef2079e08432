package interp

import (
	"errors"
	"fmt"

	"minipas/pkg/compiler"
)

var (
	ErrInfiniteLoop      = errors.New("possible infinite loop")
	ErrOutputLimit       = errors.New("output limit exceeded")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrOverflow          = errors.New("arithmetic overflow")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInputInterrupted  = errors.New("input interrupted")
	ErrUndefinedVariable = errors.New("undefined variable")
)

// RuntimeError is a fatal error raised while executing a program. It wraps
// one of the sentinel errors above so callers can use errors.Is.
type RuntimeError struct {
	Line   int
	Column int
	Err    error
	Detail string // optional context appended to the message
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error [line %d:%d]: %s", e.Line, e.Column, e.Message())
}

// Message is the error text without the position prefix.
func (e *RuntimeError) Message() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// fail builds a RuntimeError positioned at n.
func fail(n compiler.Node, err error, format string, args ...any) *RuntimeError {
	pos := n.Position()
	re := &RuntimeError{Line: pos.Line, Column: pos.Column, Err: err}
	if format != "" {
		re.Detail = fmt.Sprintf(format, args...)
	}
	return re
}
