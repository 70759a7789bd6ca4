package sidecar

import (
	"errors"
	"fmt"
)

// Code categorizes a sidecar failure. The set is fixed and is part of the
// wire contract with the controller.
type Code string

const (
	// CodeNotAuthorized indicates the OS denied automation access to the app.
	CodeNotAuthorized Code = "NOT_AUTHORIZED"

	// CodeNotFound indicates no live object carries the requested identifier.
	CodeNotFound Code = "NOT_FOUND"

	// CodeNotWritable indicates the target is read-only (shared notes and folders).
	CodeNotWritable Code = "NOT_WRITABLE"

	// CodeInvalidArguments indicates malformed or conflicting input.
	CodeInvalidArguments Code = "INVALID_ARGUMENTS"

	// CodeLocked indicates the note is password protected.
	CodeLocked Code = "LOCKED"

	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is a failure with a taxonomy code and a human-readable message.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is what the controller sees in the envelope.
	Message string

	// Err is the underlying cause (optional). It is not shown to the controller.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotAuthorized(format string, args ...any) *Error {
	return New(CodeNotAuthorized, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func NotWritable(format string, args ...any) *Error {
	return New(CodeNotWritable, format, args...)
}

func InvalidArguments(format string, args ...any) *Error {
	return New(CodeInvalidArguments, format, args...)
}

func Locked(format string, args ...any) *Error {
	return New(CodeLocked, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(CodeInternal, format, args...)
}

// CodeOf returns the taxonomy code of err.
// Uses errors.As to handle wrapped errors; anything unrecognized is INTERNAL.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// MessageOf returns the controller-facing message of err.
// For foreign errors the full error string is used.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
