package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures cross-origin access for browser storefronts.
// An empty AllowOrigins disables CORS headers; "*" allows any origin but
// never with credentials.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig lists the methods and headers the eSIM API uses. No
// origin is allowed until the storefront origin is configured.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization", HeaderRequestID, HeaderIdempotencyKey, "Accept", "Origin"},
		ExposeHeaders: []string{HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
}

// CORS applies DefaultCORSConfig
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig answers preflight requests with 204 whether or not the
// origin is allowed, and decorates other requests from allowed origins.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowOrigins))
	wildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	shared := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowHeaders, ", "),
	}
	if len(cfg.ExposeHeaders) > 0 {
		shared["Access-Control-Expose-Headers"] = strings.Join(cfg.ExposeHeaders, ", ")
	}
	if cfg.MaxAge > 0 {
		shared["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	// allowOrigin returns the Access-Control-Allow-Origin value, "" to skip
	allowOrigin := func(origin string) string {
		switch {
		case wildcard:
			return "*"
		case origin != "" && allowed[origin]:
			return origin
		}
		return ""
	}

	return func(c *gin.Context) {
		if value := allowOrigin(c.GetHeader("Origin")); value != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", value)
			if cfg.AllowCredentials && value != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			for k, v := range shared {
				h.Set(k, v)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
