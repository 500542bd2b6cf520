// Package errors provides structured error types for artframe.
//
// Every failure that crosses a package boundary carries a [Code] so callers
// can tell a transient network problem from a broken cache file or a fatal
// catalog problem without string matching:
//   - INVALID_*: configuration and catalog problems (fatal)
//   - NETWORK_ERROR, NOT_FOUND: remote failures
//   - FILESYSTEM, PARSE, IMAGE: per-item failures on local files
//   - NO_CONTENT: the compositor found nothing to show
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyCatalog, "no IDs found in %s", path)
//	if errors.Is(err, errors.ErrCodeEmptyCatalog) {
//	    // fatal
//	}
//
//	err := errors.Wrap(errors.ErrCodeParse, cause, "decode record %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Fatal input errors
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidCatalog Code = "INVALID_CATALOG"
	ErrCodeEmptyCatalog   Code = "EMPTY_CATALOG"

	// Remote errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeNotFound Code = "NOT_FOUND"

	// Local per-item errors
	ErrCodeFilesystem Code = "FILESYSTEM"
	ErrCodeParse      Code = "PARSE"
	ErrCodeImage      Code = "IMAGE"

	// Outcomes
	ErrCodeNoContent Code = "NO_CONTENT"
	ErrCodeDisplay   Code = "DISPLAY"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err should stop a whole run rather than a single item.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInvalidCatalog, ErrCodeEmptyCatalog:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
