package dto

import (
	"errors"
	"net/http"

	"github.com/compliport/backend/internal/domain/shared"
)

// Transport-level error codes for failures that never reach the domain
// layer (malformed requests, missing auth, throttling).
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodePayloadSize  = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain
// codes come from shared.DomainError; anything not listed falls back
// to sentinel classification in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	// Transport errors
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodePayloadSize:  http.StatusRequestEntityTooLarge,

	// Entitlement decisions
	"NOT_ENTITLED":           http.StatusForbidden,
	"QUOTA_EXCEEDED":         http.StatusTooManyRequests,
	"NO_ACTIVE_SUBSCRIPTION": http.StatusNotFound,
	"UNKNOWN_FEATURE":        http.StatusBadRequest,

	// Subscription lifecycle
	"TIER_NOT_AVAILABLE":  http.StatusUnprocessableEntity,
	"ACTIVATION_CONFLICT": http.StatusConflict,

	// Voucher redemption
	"INVALID_VOUCHER_CODE":     http.StatusBadRequest,
	"VOUCHER_INACTIVE":         http.StatusUnprocessableEntity,
	"VOUCHER_EXPIRED":          http.StatusUnprocessableEntity,
	"VOUCHER_EXHAUSTED":        http.StatusUnprocessableEntity,
	"VOUCHER_ALREADY_REDEEMED": http.StatusConflict,

	// Sessions
	"SESSION_INVALID":           http.StatusUnauthorized,
	"SESSION_EVICTION_CONFLICT": http.StatusConflict,

	// Generic domain outcomes
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INVALID_INPUT":        http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, falling back
// to 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusFromError resolves the HTTP status for a domain error. Explicit
// code mappings win; otherwise the wrapped sentinel decides, so the
// long tail of INVALID_* validation codes lands on 400 without each
// needing its own entry.
func StatusFromError(err error) int {
	if status, ok := ErrorCodeHTTPStatus[shared.ErrorCode(err)]; ok {
		return status
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID so clients can correlate failures with server logs.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	if requestID != "" {
		resp.Error.RequestID = requestID
	}
	return resp
}
