package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrUsage    ErrorCode = "USAGE"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Package errors
	ErrInvalidPackageSpec ErrorCode = "INVALID_PACKAGE_SPEC"
	ErrInstallationFailed ErrorCode = "INSTALLATION_FAILED"
	ErrUnsupportedPackage ErrorCode = "UNSUPPORTED_PACKAGE"
	ErrNotInstalled       ErrorCode = "NOT_INSTALLED"
	ErrMetadata           ErrorCode = "METADATA"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"

	// Subprocess errors
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"
)

// PipisError represents a structured error with code and details
type PipisError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PipisError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PipisError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PipisError) Is(target error) bool {
	var targetErr *PipisError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PipisError with the given code and message
func New(code ErrorCode, message string) *PipisError {
	return &PipisError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PipisError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PipisError {
	return &PipisError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PipisError
func Wrap(err error, code ErrorCode, message string) *PipisError {
	if err == nil {
		return nil
	}
	return &PipisError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PipisError {
	if err == nil {
		return nil
	}
	return &PipisError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PipisError) WithDetail(key string, value interface{}) *PipisError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code.
// The whole chain is searched, so a USAGE error wrapped by another
// PipisError is still reported as USAGE.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var pipisErr *PipisError
		if !errors.As(err, &pipisErr) {
			return false
		}
		if pipisErr.Code == code {
			return true
		}
		err = pipisErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PipisError
func GetErrorCode(err error) ErrorCode {
	var pipisErr *PipisError
	if errors.As(err, &pipisErr) {
		return pipisErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PipisError
func GetErrorDetails(err error) map[string]interface{} {
	var pipisErr *PipisError
	if errors.As(err, &pipisErr) {
		return pipisErr.Details
	}
	return nil
}

// UserMessage returns the message meant for the person running pipis: the
// outermost PipisError message without its code, or err.Error() otherwise
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pipisErr *PipisError
	if errors.As(err, &pipisErr) {
		return pipisErr.Message
	}
	return err.Error()
}
