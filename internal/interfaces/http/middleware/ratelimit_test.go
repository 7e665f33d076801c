package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return newRateLimiter(limit, window, clock.Now), clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter, _ := newTestLimiter(5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter, _ := newTestLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("client3"))
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		clock.Advance(30 * time.Second)
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		clock.Advance(time.Minute)
		assert.Equal(t, 2, limiter.Remaining("client3"))
	})

	t.Run("remaining returns correct count", func(t *testing.T) {
		limiter, _ := newTestLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("newclient"))
		limiter.Allow("newclient")
		limiter.Allow("newclient")
		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("evicts idle clients", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)
		limiter.Allow("idle")

		clock.Advance(3 * time.Minute)
		limiter.evictIdle()

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.Empty(t, limiter.clients)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter, _ := newTestLimiter(100, time.Minute)
		var wg sync.WaitGroup
		var allowed atomic.Int64

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(100), allowed.Load())
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		assert.NotPanics(t, func() {
			limiter.Stop()
			limiter.Stop()
		})
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)

	router := gin.New()
	router.Use(RequestID(), RateLimit(limiter))
	router.GET("/api/v1/esim/packages", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/esim/packages", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	w = send()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
	assert.Equal(t, w.Header().Get(HeaderRequestID), resp.Error.RequestID)
}

func TestRateLimitByKey(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Storefront")
	}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for _, tc := range []struct {
		storefront string
		want       int
	}{
		{"ar", http.StatusOK},
		{"ar", http.StatusTooManyRequests},
		{"uy", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Storefront", tc.storefront)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.storefront)
	}
}
