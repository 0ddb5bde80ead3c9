package types

import "fmt"

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDuplicate  ErrorType = "duplicate"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeUpstream   ErrorType = "upstream"
	ErrorTypeInternal   ErrorType = "internal"
)

// PortalError represents a structured error in the portal dashboard
type PortalError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PortalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *PortalError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *PortalError {
	return &PortalError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewDuplicateError creates a new duplicate-request error
func NewDuplicateError(code, message string, details map[string]interface{}) *PortalError {
	return &PortalError{
		Type:    ErrorTypeDuplicate,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string) *PortalError {
	return &PortalError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewUpstreamError creates a new upstream-call error. The message is
// the server-provided text when one was present, otherwise a generic
// fallback chosen by the caller.
func NewUpstreamError(code, message string, cause error) *PortalError {
	return &PortalError{
		Type:    ErrorTypeUpstream,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *PortalError {
	return &PortalError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error codes
const (
	ErrCodePurposeRequired   = "PURPOSE_REQUIRED"
	ErrCodeInvalidPatientID  = "INVALID_PATIENT_ID"
	ErrCodeAlreadyRequested  = "ALREADY_REQUESTED"
	ErrCodeDuplicateSet      = "DUPLICATE_REQUEST_SET"
	ErrCodeValidationPending = "VALIDATION_PENDING"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUpstreamError     = "UPSTREAM_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)
