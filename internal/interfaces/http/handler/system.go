package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenStatus reports whether a provider token is cached
type TokenStatus interface {
	HasValidToken(ctx context.Context) bool
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	tokens    TokenStatus
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. tokens may be nil.
func NewSystemHandler(name, version string, tokens TokenStatus) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		tokens:    tokens,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"esim-gateway"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /api/v1/system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /api/v1/system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HealthResponse is the liveness payload
// @name HandlerHealthResponse
type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	Time          string `json:"time" example:"2026-01-23T12:00:00Z"`
	ProviderToken string `json:"provider_token" example:"cached"`
}

// Health reports liveness and whether a provider token is cached. It never
// calls the provider; a missing token is refreshed by the next request.
// @ID           health
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	tokenState := "absent"
	if h.tokens != nil && h.tokens.HasValidToken(c.Request.Context()) {
		tokenState = "cached"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Time:          time.Now().Format(time.RFC3339),
		ProviderToken: tokenState,
	})
}

// RegisterRoutes mounts the system endpoints under rg
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/system")
	group.GET("/info", h.GetSystemInfo)
	group.GET("/ping", h.Ping)
}
