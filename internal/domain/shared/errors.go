package shared

import "errors"

// DomainError represents a domain-level error. A non-nil cause links
// the error to one of the common sentinels below so callers can
// branch with errors.Is while keeping the specific code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel the error was built from
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error wrapping a sentinel cause
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrConcurrencyConflict = &DomainError{Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrUnauthorized        = &DomainError{Code: "UNAUTHORIZED", Message: "Not authorized to perform this action"}
	ErrForbidden           = &DomainError{Code: "FORBIDDEN", Message: "Access to this resource is forbidden"}
	ErrInvalidState        = &DomainError{Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
	ErrQuotaExceeded       = &DomainError{Code: "QUOTA_EXCEEDED", Message: "Usage quota exceeded for the current period"}
)

// ErrorCode extracts the domain error code from any error in the
// chain, or returns INTERNAL_ERROR for unexpected failures.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL_ERROR"
}
