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

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Filesystem errors
	ErrFileRead      ErrorCode = "FILE_READ"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrFileCopy      ErrorCode = "FILE_COPY"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrOwnership     ErrorCode = "OWNERSHIP"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"

	// Precondition errors: observed host state requires an operator,
	// not blind automation (e.g. a real directory where a symlink
	// must live)
	ErrPrecondition ErrorCode = "PRECONDITION"

	// Service control errors
	ErrServiceControl ErrorCode = "SERVICE_CONTROL"

	// Validation gate errors
	ErrValidation ErrorCode = "VALIDATION_FAILED"

	// Pipeline errors
	ErrStepInvalid ErrorCode = "STEP_INVALID"
	ErrRunAborted  ErrorCode = "RUN_ABORTED"
)

// CamstackError represents a structured error with code and details
type CamstackError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CamstackError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CamstackError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CamstackError) Is(target error) bool {
	var targetErr *CamstackError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CamstackError with the given code and message
func New(code ErrorCode, message string) *CamstackError {
	return &CamstackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CamstackError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CamstackError {
	return &CamstackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CamstackError
func Wrap(err error, code ErrorCode, message string) *CamstackError {
	if err == nil {
		return nil
	}
	return &CamstackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CamstackError {
	if err == nil {
		return nil
	}
	return &CamstackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CamstackError) WithDetail(key string, value interface{}) *CamstackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cerr *CamstackError
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CamstackError
func GetErrorCode(err error) ErrorCode {
	var cerr *CamstackError
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CamstackError
func GetErrorDetails(err error) map[string]interface{} {
	var cerr *CamstackError
	if errors.As(err, &cerr) {
		return cerr.Details
	}
	return nil
}
