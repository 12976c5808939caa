// Package errors provides standardized domain errors with codes for the Bookdex pipeline and API.
//
// Usage:
//
//	// In pipeline stages - return typed errors
//	if doc.WordCount == 0 {
//	    return errors.Extraction("no extractable text in any chapter")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrExtraction) {
//	    record.Fail(StageExtracting, err)
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeTimeout:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// Pipeline codes. All are per-book and non-fatal to a run except
	// CodePersistence when the store itself cannot be opened.
	CodeContainerRead    Code = "CONTAINER_READ"
	CodeExtraction       Code = "EXTRACTION"
	CodeTimeout          Code = "TIMEOUT"
	CodePersistence      Code = "PERSISTENCE"
	CodeModelUnavailable Code = "MODEL_UNAVAILABLE"

	// API codes.
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	CodeValidation Code = "VALIDATION"
	CodeInternal   Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeContainerRead, CodeExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrContainerRead    = &Error{Code: CodeContainerRead, Message: "cannot read book container"}
	ErrExtraction       = &Error{Code: CodeExtraction, Message: "no extractable text"}
	ErrTimeout          = &Error{Code: CodeTimeout, Message: "stage timed out"}
	ErrPersistence      = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrModelUnavailable = &Error{Code: CodeModelUnavailable, Message: "model unavailable"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// ContainerRead creates a container read error.
func ContainerRead(msg string) *Error {
	return &Error{Code: CodeContainerRead, Message: msg}
}

// ContainerReadf creates a container read error with formatted message.
func ContainerReadf(format string, args ...any) *Error {
	return &Error{Code: CodeContainerRead, Message: fmt.Sprintf(format, args...)}
}

// Extraction creates an extraction error.
func Extraction(msg string) *Error {
	return &Error{Code: CodeExtraction, Message: msg}
}

// Extractionf creates an extraction error with formatted message.
func Extractionf(format string, args ...any) *Error {
	return &Error{Code: CodeExtraction, Message: fmt.Sprintf(format, args...)}
}

// Timeout creates a timeout error.
func Timeout(msg string) *Error {
	return &Error{Code: CodeTimeout, Message: msg}
}

// Timeoutf creates a timeout error with formatted message.
func Timeoutf(format string, args ...any) *Error {
	return &Error{Code: CodeTimeout, Message: fmt.Sprintf(format, args...)}
}

// Persistence creates a persistence error.
func Persistence(msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg}
}

// Persistencef creates a persistence error with formatted message.
func Persistencef(format string, args ...any) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf(format, args...)}
}

// ModelUnavailable creates a model unavailable error.
func ModelUnavailable(msg string) *Error {
	return &Error{Code: CodeModelUnavailable, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
