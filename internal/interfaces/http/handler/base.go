package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/interfaces/http/dto"
	"github.com/globoesim/gateway/internal/interfaces/http/middleware"
)

// Fallback messages when the provider gives no human-readable reason
const (
	msgProviderAuth    = "Could not authenticate with the eSIM provider"
	msgProviderTimeout = "The eSIM provider did not respond in time"
	msgRequestTimeout  = "The request was cancelled or timed out"
	msgInternal        = "An unexpected error occurred"
	msgOrderInProgress = "An order with this Idempotency-Key is still being processed"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.HTTPStatus(code), code, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// HandleError converts gateway errors to HTTP responses. Provider failures
// answer 502 with the provider's own message when it sent one, fallback
// otherwise; provider timeouts answer 504.
func (h *BaseHandler) HandleError(c *gin.Context, err error, fallback string) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code, message := classifyError(err, fallback)
	if code == dto.ErrCodeValidationRequired || code == dto.ErrCodeValidation {
		var validationErr *esim.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
			resp.Error.Details = []dto.ValidationDetail{{Field: validationErr.Field, Message: validationErr.Message}}
			c.JSON(dto.HTTPStatus(code), resp)
			return
		}
	}
	h.ErrorWithCode(c, code, message)
}

func classifyError(err error, fallback string) (code, message string) {
	var (
		validationErr *esim.ValidationError
		authErr       *esim.AuthError
		upstreamErr   *esim.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		message = validationErr.Message
		if validationErr.Field != "" {
			message = validationErr.Field + " " + validationErr.Message
		}
		if validationErr.Missing {
			return dto.ErrCodeValidationRequired, message
		}
		return dto.ErrCodeValidation, message

	case errors.As(err, &authErr):
		if authErr.Timeout {
			return dto.ErrCodeUpstreamTimeout, msgProviderTimeout
		}
		return dto.ErrCodeUpstreamAuth, firstNonEmpty(authErr.ProviderMessage(), msgProviderAuth)

	case errors.As(err, &upstreamErr):
		if upstreamErr.Timeout {
			return dto.ErrCodeUpstreamTimeout, msgProviderTimeout
		}
		return dto.ErrCodeUpstream, firstNonEmpty(upstreamErr.ProviderMessage(), fallback)

	case errors.Is(err, esim.ErrOrderInProgress):
		return dto.ErrCodeConflict, msgOrderInProgress

	case errors.Is(err, esim.ErrTransform):
		return dto.ErrCodeUpstreamResponse, fallback

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dto.ErrCodeTimeout, msgRequestTimeout

	default:
		return dto.ErrCodeInternal, msgInternal
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
