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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Snapshot errors
	ErrSnapshotFailed ErrorCode = "SNAPSHOT_FAILED"

	// Manifest errors
	ErrManifestUninitialized ErrorCode = "MANIFEST_UNINITIALIZED"
	ErrManifestRead          ErrorCode = "MANIFEST_READ"
	ErrManifestWrite         ErrorCode = "MANIFEST_WRITE"

	// Registry errors
	ErrNoSessionsFound ErrorCode = "NO_SESSIONS_FOUND"
	ErrSessionExpire   ErrorCode = "SESSION_EXPIRE"

	// Rollback errors
	ErrRestoreFailed   ErrorCode = "RESTORE_FAILED"
	ErrPartialFailure  ErrorCode = "PARTIAL_FAILURE"
	ErrRollbackAborted ErrorCode = "ROLLBACK_ABORTED"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCopy      ErrorCode = "FILE_COPY"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
)

// DotbakError represents a structured error with code and details
type DotbakError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotbakError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotbakError) Unwrap() error {
	return e.Wrapped
}

// Is matches two DotbakErrors by code
func (e *DotbakError) Is(target error) bool {
	var targetErr *DotbakError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotbakError with the given code and message
func New(code ErrorCode, message string) *DotbakError {
	return &DotbakError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotbakError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotbakError {
	return &DotbakError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotbakError
func Wrap(err error, code ErrorCode, message string) *DotbakError {
	if err == nil {
		return nil
	}
	return &DotbakError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotbakError {
	if err == nil {
		return nil
	}
	return &DotbakError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotbakError) WithDetail(key string, value interface{}) *DotbakError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dbErr *DotbakError
	if errors.As(err, &dbErr) {
		return dbErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotbakError
func GetErrorCode(err error) ErrorCode {
	var dbErr *DotbakError
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return ErrUnknown
}
