package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/test/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterAPIMiddlewareSkipsHealth(t *testing.T) {
	engine := gin.New()
	calls := 0
	NewRouter(engine,
		WithAPIMiddleware(func(c *gin.Context) {
			calls++
			c.Next()
		}),
		WithHealth("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		}),
	).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, calls)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}

func TestRouterNotFound(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeMethodNotAllowed)
}

func TestRouterRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithHealth("/health", func(c *gin.Context) {}))
	r.Register(pingRegistrar{}).Setup()

	assert.ElementsMatch(t, []string{"GET /health", "GET /api/v1/test/ping"}, r.Routes())
}
