package esim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Error categories
// ---------------------------------------------------------------------------

var (
	ErrValidation = errors.New("esim: invalid input")
	ErrAuth       = errors.New("esim: provider authentication failed")
	ErrUpstream   = errors.New("esim: provider request failed")
	ErrTransform  = errors.New("esim: malformed provider response")
)

// ValidationError reports caller input rejected before any upstream call.
type ValidationError struct {
	Field   string
	Message string
	// Missing is set when the field was absent or blank.
	Missing bool
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewRequiredError reports a missing required field.
func NewRequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required", Missing: true}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthError reports a failed credential exchange. StatusCode is zero when the
// exchange never produced an HTTP response; Timeout marks an exchange that
// ran out of time.
type AuthError struct {
	StatusCode int
	Timeout    bool
	Body       []byte
	Err        error
}

func (e *AuthError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timeout: %v", ErrAuth, e.Err)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: HTTP %d: %v", ErrAuth, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", ErrAuth, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrAuth, e.Err)
	default:
		return ErrAuth.Error()
	}
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }
func (e *AuthError) Unwrap() error        { return e.Err }

// ProviderMessage returns the provider's human readable message, if any.
func (e *AuthError) ProviderMessage() string { return providerMessage(e.Body) }

// UpstreamError reports a failed provider call. NotSent marks a call that
// failed before the request left the gateway.
type UpstreamError struct {
	StatusCode int
	Timeout    bool
	NotSent    bool
	Body       []byte
	Err        error
}

// Status renders the failure status: "timeout", the HTTP code, or "error".
func (e *UpstreamError) Status() string {
	switch {
	case e.Timeout:
		return "timeout"
	case e.StatusCode != 0:
		return strconv.Itoa(e.StatusCode)
	default:
		return "error"
	}
}

func (e *UpstreamError) Error() string {
	if e.Err != nil && e.StatusCode == 0 {
		return fmt.Sprintf("%s: status=%s: %v", ErrUpstream, e.Status(), e.Err)
	}
	return fmt.Sprintf("%s: status=%s", ErrUpstream, e.Status())
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
func (e *UpstreamError) Unwrap() error        { return e.Err }

// ProviderMessage returns the provider's human readable message, if any.
func (e *UpstreamError) ProviderMessage() string { return providerMessage(e.Body) }

// TransformError reports a provider response that could not be reshaped.
// It also matches ErrUpstream: to callers it is a failed provider call.
type TransformError struct {
	Reason string
	Err    error
}

// NewTransformError creates a TransformError.
func NewTransformError(reason string, err error) *TransformError {
	return &TransformError{Reason: reason, Err: err}
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrTransform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrTransform, e.Reason)
}

func (e *TransformError) Is(target error) bool {
	return target == ErrTransform || target == ErrUpstream
}

func (e *TransformError) Unwrap() error { return e.Err }

// OrderMayExist reports whether a failed purchase may still have been placed
// and charged by the provider. Only failures proving the provider did not
// take the order report false: rejected input, a failed credential exchange,
// a call that never left the gateway, and an HTTP error status. Timeouts,
// transport failures after sending and unreadable responses report true.
func OrderMayExist(err error) bool {
	var (
		validationErr *ValidationError
		authErr       *AuthError
		transformErr  *TransformError
		upstreamErr   *UpstreamError
	)
	switch {
	case err == nil:
		return false
	case errors.As(err, &validationErr), errors.As(err, &authErr):
		return false
	case errors.As(err, &transformErr):
		return true
	case errors.As(err, &upstreamErr):
		return !upstreamErr.NotSent && upstreamErr.StatusCode < 400
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Unwrapped context errors come from waiting on a token, before sending
		return false
	default:
		return true
	}
}

// providerMessage extracts meta.message, then error, from a provider error body.
func providerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Meta struct {
			Message string `json:"message"`
		} `json:"meta"`
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Meta.Message != "" {
		return payload.Meta.Message
	}
	if s, ok := payload.Error.(string); ok {
		return s
	}
	return ""
}
