// Package router mounts the gateway's HTTP handlers on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
	"github.com/globoesim/gateway/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	apiUse     []gin.HandlerFunc
	registrars []RouteRegistrar
	health     gin.HandlerFunc
	healthPath string
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAPIMiddleware adds middleware that runs only for versioned API routes.
// Probes mounted with WithHealth bypass it.
func WithAPIMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.apiUse = append(r.apiUse, handlers...)
	}
}

// WithHealth mounts a liveness handler at path, outside the API prefix
func WithHealth(path string, handler gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.healthPath = path
		r.health = handler
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	if r.health != nil {
		r.engine.GET(r.healthPath, r.health)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.apiUse) > 0 {
		api.Use(r.apiUse...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	r.engine.HandleMethodNotAllowed = true
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	r.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeMethodNotAllowed, "Method not allowed", middleware.GetRequestID(c)))
	})
}

// Routes lists the registered method and path pairs
func (r *Router) Routes() []string {
	routes := make([]string, 0)
	for _, info := range r.engine.Routes() {
		routes = append(routes, info.Method+" "+info.Path)
	}
	return routes
}
