package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request ID in both directions
	HeaderRequestID = "X-Request-ID"
	// HeaderIdempotencyKey deduplicates order submissions
	HeaderIdempotencyKey = "Idempotency-Key"
	// RequestIDKey is the gin context key holding the request ID
	RequestIDKey = "request_id"
	// MaxRequestIDLength caps client supplied request IDs
	MaxRequestIDLength = 128
)

// RequestID tags each request with an ID, echoed in X-Request-ID and in
// error envelopes. A client supplied ID up to MaxRequestIDLength is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > MaxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
