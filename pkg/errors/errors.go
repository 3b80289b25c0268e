// Package errors augments the standard errors with wrappable
// sentinel errors: packages export fixed error values that callers
// test with Is(), while still carrying the underlying cause.
package errors

import (
	stderr "errors"
)

var _ error = New("")

// New builds a new Error from a message
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error is an error with an attachable cause.
//
// Unlike wrapping with fmt.Errorf("%w", ...), the sentinel identity is the
// Error value itself, so status packages can export comparable sentinels
// that still chain to the lower-level failure.
type Error struct {
	msg string
	err error
}

// Error message
func (e *Error) Error() string {
	return e.msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error, keeping the sentinel identity
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err}
}

// WrapMessage wraps a free-form message as the nested error
func (e *Error) WrapMessage(msg string) *Error {
	return &Error{msg: e.msg, err: stderr.New(msg)}
}

// Is reports whether this error matches the target
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok && other.msg == e.msg {
		return true
	}
	return stderr.Is(e.err, target)
}

// As finds the first error in err's chain that matches target
// (a shortcut to the standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to the standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
