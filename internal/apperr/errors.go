// Package apperr defines the application-error taxonomy. Errors of this
// kind are caught at the command boundary and printed without a stack
// trace; anything else is an unexpected fault and crashes the process.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation Kind = "validation"
	KindExternal   Kind = "external"
	KindNotFound   Kind = "not_found"
)

// Error is an expected application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf creates a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Externalf creates an external-service error.
func Externalf(format string, args ...any) *Error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new application error of the given kind.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// FromError returns the application error wrapped in err, if any.
func FromError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
