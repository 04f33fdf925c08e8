package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

const (
	// InvalidRequest marks malformed or semantically invalid input.
	InvalidRequest Kind = "invalid_request"
	// Forbidden marks an actor lacking rights over a referenced resource.
	Forbidden Kind = "forbidden"
	// NotFound marks a referenced id that does not exist.
	NotFound Kind = "not_found"
	// Conflict marks a uniqueness violation.
	Conflict Kind = "conflict"
)

// Error is the single error type returned by Ledger operations for
// domain failures. Storage failures are returned wrapped, not as *Error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: InvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...any) error {
	return &Error{Kind: Forbidden, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// NewConflict lets storage implementations report uniqueness violations
// they detect themselves.
func NewConflict(format string, args ...any) error {
	return conflictf(format, args...)
}
