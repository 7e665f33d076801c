package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per client. Each bucket holds limit
// tokens and refills completely over window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter and starts evicting idle clients
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window, time.Now)
	go rl.cleanup(window * 2)
	return rl
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Stop ends the eviction loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle drops clients whose bucket has refilled and has been idle for
// two windows.
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.window*2 {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) bucket(key string, now time.Time) *client {
	c, ok := rl.clients[key]
	if !ok {
		every := rl.window / time.Duration(max(rl.limit, 1))
		c = &client{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c
}

// Allow reports whether a request from key may proceed, consuming a token
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	return rl.bucket(key, now).limiter.AllowN(now, 1)
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		return rl.limit
	}
	return int(math.Max(0, math.Floor(c.limiter.TokensAt(rl.now()))))
}

// Limit returns the bucket size
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limiter.window.Seconds()/float64(max(limiter.limit, 1))))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}
