package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginRequestIDKey is where the RequestID middleware stores the ID
const ginRequestIDKey = "request_id"

// GinMiddleware logs one access entry per request, at error level for 5xx,
// warn for 4xx and info otherwise. quietPaths such as the health probe are
// logged at debug. The request ID is copied into the request context so
// services reached from a handler can correlate through For.
func GinMiddleware(log *zap.Logger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), c.GetString(ginRequestIDKey)))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, zap.String("user_agent", ua))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		reqLog := For(c.Request.Context(), log)
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			reqLog.Warn("HTTP Request", fields...)
		case quiet[c.Request.URL.Path]:
			reqLog.Debug("HTTP Request", fields...)
		default:
			reqLog.Info("HTTP Request", fields...)
		}
	}
}

// Recovery turns a handler panic into a bare 500 and logs the stack.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					zap.String("request_id", c.GetString(ginRequestIDKey)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
