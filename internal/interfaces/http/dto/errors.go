package dto

import "net/http"

// Error codes returned in ErrorInfo.Code, ERR_<CATEGORY>[_<DETAIL>].
const (
	ErrCodeInternal = "ERR_INTERNAL"

	// Request errors
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeMethodNotAllowed   = "ERR_METHOD_NOT_ALLOWED"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeTimeout            = "ERR_TIMEOUT"

	// ErrCodeConflict reports an order whose idempotency key is still in flight
	ErrCodeConflict = "ERR_CONFLICT"

	// Provider errors. The gateway answers 502 for anything the provider
	// refused or garbled and 504 when it did not answer in time.
	ErrCodeUpstream         = "ERR_UPSTREAM"
	ErrCodeUpstreamAuth     = "ERR_UPSTREAM_AUTH"
	ErrCodeUpstreamResponse = "ERR_UPSTREAM_RESPONSE"
	ErrCodeUpstreamTimeout  = "ERR_UPSTREAM_TIMEOUT"
)

var statusByCode = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeConflict:           http.StatusConflict,

	ErrCodeUpstream:         http.StatusBadGateway,
	ErrCodeUpstreamAuth:     http.StatusBadGateway,
	ErrCodeUpstreamResponse: http.StatusBadGateway,
	ErrCodeUpstreamTimeout:  http.StatusGatewayTimeout,
}

// HTTPStatus returns the status sent with code, 500 for unknown codes.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
