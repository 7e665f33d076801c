package esim

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Error category Tests
// ---------------------------------------------------------------------------

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		auth       bool
		upstream   bool
		transform  bool
	}{
		{"validation", NewValidationError("packageId", "is required"), true, false, false, false},
		{"auth", &AuthError{StatusCode: 401}, false, true, false, false},
		{"upstream", &UpstreamError{StatusCode: 500}, false, false, true, false},
		{"transform is also upstream", NewTransformError("missing data", nil), false, false, true, true},
		{"wrapped auth", fmt.Errorf("dispatch: %w", &AuthError{}), false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, errors.Is(tt.err, ErrValidation))
			assert.Equal(t, tt.auth, errors.Is(tt.err, ErrAuth))
			assert.Equal(t, tt.upstream, errors.Is(tt.err, ErrUpstream))
			assert.Equal(t, tt.transform, errors.Is(tt.err, ErrTransform))
		})
	}
}

func TestUpstreamError_Status(t *testing.T) {
	assert.Equal(t, "timeout", (&UpstreamError{Timeout: true, Err: context.DeadlineExceeded}).Status())
	assert.Equal(t, "422", (&UpstreamError{StatusCode: 422}).Status())
	assert.Equal(t, "error", (&UpstreamError{Err: errors.New("connection refused")}).Status())
	assert.Contains(t, (&UpstreamError{Timeout: true}).Error(), "status=timeout")
}

func TestUpstreamError_Unwrap(t *testing.T) {
	err := &UpstreamError{Timeout: true, Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProviderMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"meta message wins", `{"meta":{"message":"Package not available"},"error":"other"}`, "Package not available"},
		{"error string", `{"error":"Insufficient balance"}`, "Insufficient balance"},
		{"error object ignored", `{"error":{"code":1}}`, ""},
		{"not json", `<html>bad gateway</html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &UpstreamError{StatusCode: 422, Body: []byte(tt.body)}
			assert.Equal(t, tt.expected, err.ProviderMessage())
		})
	}
}

func TestAuthError_Error(t *testing.T) {
	assert.Equal(t, "esim: provider authentication failed: HTTP 401", (&AuthError{StatusCode: 401}).Error())
	assert.Equal(t, "esim: provider authentication failed: boom", (&AuthError{Err: errors.New("boom")}).Error())
}

func TestAuthError_Timeout(t *testing.T) {
	err := &AuthError{Timeout: true, Err: context.DeadlineExceeded}
	assert.Equal(t, "esim: provider authentication failed: timeout: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrderMayExist(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no error", nil, false},
		{"validation", NewRequiredError("packageId"), false},
		{"auth rejected", &AuthError{StatusCode: 401}, false},
		{"auth timeout", &AuthError{Timeout: true, Err: context.DeadlineExceeded}, false},
		{"provider 422", &UpstreamError{StatusCode: 422}, false},
		{"provider 503", &UpstreamError{StatusCode: 503}, false},
		{"rate limit wait", &UpstreamError{NotSent: true, Timeout: true, Err: context.DeadlineExceeded}, false},
		{"response timeout", &UpstreamError{Timeout: true, Err: context.DeadlineExceeded}, true},
		{"connection reset after send", &UpstreamError{Err: errors.New("connection reset by peer")}, true},
		{"body cut off after 200", &UpstreamError{StatusCode: 200, Err: errors.New("failed to read response: unexpected EOF")}, true},
		{"unreadable body", NewTransformError("failed to parse order response", errors.New("unexpected end of JSON input")), true},
		{"wrapped transform", fmt.Errorf("create order: %w", NewTransformError("order response has no data", nil)), true},
		{"token wait cancelled", context.Canceled, false},
		{"unclassified", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderMayExist(tt.err))
		})
	}
}
