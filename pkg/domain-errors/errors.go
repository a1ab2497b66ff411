// Package domainerrors defines the coded errors services return to their callers.
//
// Stores speak in sentinel errors (see pkg/platform/sentinel); services
// translate those into a *Error carrying a Code so transports can map the
// failure kind without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure. Values are stable and appear on the wire.
type Code string

const (
	// CodeValidation marks malformed or missing caller input.
	CodeValidation Code = "validation_error"
	// CodeBadRequest marks requests that could not be decoded at all.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks values rejected at a parsing boundary (ids, enums).
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation is raised by model constructors; services
	// convert it to CodeValidation before it leaves the module.
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	// CodeInvalidState marks operations that are not legal for the entity's current status.
	CodeInvalidState Code = "invalid_state"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to API callers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and a caller-facing message to err. The cause stays
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf reports the code of the outermost *Error, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias for HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
