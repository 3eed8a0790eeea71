package fractal

import (
	"errors"
	"fmt"
)

// Kind classifies why a request did not produce a grid.
type Kind int

const (
	InvalidBounds Kind = iota + 1
	InvalidDimensions
	InvalidIterationBound
	// InvalidParameter covers a non-finite hbar or c.
	InvalidParameter
	UnknownEffect
	// Cancelled is a normal outcome, e.g. a request superseded by a newer one.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidBounds:
		return "invalid_bounds"
	case InvalidDimensions:
		return "invalid_dimensions"
	case InvalidIterationBound:
		return "invalid_iteration_bound"
	case InvalidParameter:
		return "invalid_parameter"
	case UnknownEffect:
		return "unknown_effect"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Error struct {
	Kind   Kind
	Detail string
	// Err is the underlying cause, if any. For Cancelled it is the context cause.
	Err error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrInvalidBounds         = &Error{Kind: InvalidBounds}
	ErrInvalidDimensions     = &Error{Kind: InvalidDimensions}
	ErrInvalidIterationBound = &Error{Kind: InvalidIterationBound}
	ErrInvalidParameter      = &Error{Kind: InvalidParameter}
	ErrUnknownEffect         = &Error{Kind: UnknownEffect}
	ErrCancelled             = &Error{Kind: Cancelled}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsCancelled reports whether err is the Cancelled outcome, which hosts should not treat as fatal.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
