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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Tool settings errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Desired-state document errors. These are fatal: no domain runs.
	ErrDocumentParse     ErrorCode = "DOCUMENT_PARSE"
	ErrDocumentInvalid   ErrorCode = "DOCUMENT_INVALID"
	ErrTraversalRejected ErrorCode = "TRAVERSAL_REJECTED"

	// Probe errors
	ErrProbeUnavailable ErrorCode = "PROBE_UNAVAILABLE"
	ErrBackendMissing   ErrorCode = "BACKEND_MISSING"

	// Apply errors
	ErrInstallFailed         ErrorCode = "INSTALL_FAILED"
	ErrFilesystemConflict    ErrorCode = "FILESYSTEM_CONFLICT"
	ErrSymlinkFailed         ErrorCode = "SYMLINK_OPERATION_FAILED"
	ErrInvalidPreferenceType ErrorCode = "INVALID_PREFERENCE_TYPE"
	ErrPreferenceWrite       ErrorCode = "PREFERENCE_WRITE_FAILED"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// OmirosError represents a structured error with code and details
type OmirosError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *OmirosError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *OmirosError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *OmirosError) Is(target error) bool {
	var targetErr *OmirosError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new OmirosError with the given code and message
func New(code ErrorCode, message string) *OmirosError {
	return &OmirosError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new OmirosError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *OmirosError {
	return &OmirosError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an OmirosError
func Wrap(err error, code ErrorCode, message string) *OmirosError {
	if err == nil {
		return nil
	}
	return &OmirosError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *OmirosError {
	if err == nil {
		return nil
	}
	return &OmirosError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *OmirosError) WithDetail(key string, value interface{}) *OmirosError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error, or any error it wraps, has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var omErr *OmirosError
		if !errors.As(err, &omErr) {
			return false
		}
		if omErr.Code == code {
			return true
		}
		err = omErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if not an OmirosError
func GetErrorCode(err error) ErrorCode {
	var omErr *OmirosError
	if errors.As(err, &omErr) {
		return omErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an OmirosError
func GetErrorDetails(err error) map[string]interface{} {
	var omErr *OmirosError
	if errors.As(err, &omErr) {
		return omErr.Details
	}
	return nil
}
