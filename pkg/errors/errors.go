// Package errors provides structured error types for the pedigree application.
//
// Every error that crosses a component boundary (resolver, exporter, HTTP
// handler, CLI) carries a machine-readable [Code] so callers can branch on the
// category without string matching:
//
//	tree, err := resolver.Resolve(ctx, id, 3)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // unknown root animal
//	}
//
// Wrap keeps the original cause available to the standard library's
// errors.Is and errors.As:
//
//	err := errors.Wrap(errors.ErrCodeSerialization, cause, "encode %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeConflict      Code = "CONFLICT"

	ErrCodeNotFound Code = "NOT_FOUND"

	// Data integrity. The resolver never returns this code; cycles degrade to
	// an absent branch. Writes that would create a loop are rejected with it.
	ErrCodeDataIntegrityCycle Code = "DATA_INTEGRITY_CYCLE"

	// Export
	ErrCodeEmptyDataset          Code = "EMPTY_DATASET"
	ErrCodeCapabilityUnavailable Code = "CAPABILITY_UNAVAILABLE"
	ErrCodeSerialization         Code = "SERIALIZATION_ERROR"
	ErrCodeBusy                  Code = "BUSY"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a Code, a message fit for users and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause that stays visible to errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// coded returns the outermost *Error in err's chain.
func coded(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := coded(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := coded(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code prefix,
// or err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := coded(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status the API answers with. Uncoded
// errors are internal failures.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeBusy, ErrCodeDataIntegrityCycle:
		return http.StatusConflict
	case ErrCodeEmptyDataset:
		return http.StatusUnprocessableEntity
	case ErrCodeCapabilityUnavailable, ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
