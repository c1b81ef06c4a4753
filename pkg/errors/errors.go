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
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Scan errors
	ErrProfileList ErrorCode = "PROFILE_LIST"
	ErrGcRootsList ErrorCode = "GCROOTS_LIST"
	ErrUserResolve ErrorCode = "USER_RESOLVE"

	// Plan and execution errors
	ErrPlanRejected ErrorCode = "PLAN_REJECTED"
	ErrCollector    ErrorCode = "COLLECTOR"
	ErrElevation    ErrorCode = "ELEVATION"
)

// NHError represents a structured error with code and details
type NHError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *NHError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *NHError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *NHError) Is(target error) bool {
	var targetErr *NHError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new NHError with the given code and message
func New(code ErrorCode, message string) *NHError {
	return &NHError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new NHError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *NHError {
	return &NHError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an NHError
func Wrap(err error, code ErrorCode, message string) *NHError {
	if err == nil {
		return nil
	}
	return &NHError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *NHError {
	if err == nil {
		return nil
	}
	return &NHError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *NHError) WithDetail(key string, value interface{}) *NHError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HasCode checks if an error carries a specific error code
func HasCode(err error, code ErrorCode) bool {
	var nhErr *NHError
	if errors.As(err, &nhErr) {
		return nhErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, returning ErrUnknown
// for errors that are not NHError values
func GetCode(err error) ErrorCode {
	var nhErr *NHError
	if errors.As(err, &nhErr) {
		return nhErr.Code
	}
	return ErrUnknown
}
