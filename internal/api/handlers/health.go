// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/api/dto"
	"github.com/groovebot/groove-service/internal/core/cache"
	"github.com/groovebot/groove-service/internal/core/musicdb"
	"github.com/groovebot/groove-service/internal/core/userdb"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cache      cache.Cache
	userStore  userdb.Store
	musicStore musicdb.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(c cache.Cache, userStore userdb.Store, musicStore musicdb.Store) *HealthHandler {
	return &HealthHandler{
		cache:      c,
		userStore:  userStore,
		musicStore: musicStore,
	}
}

// Health handles the /health endpoint, reporting per-component status.
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]string)
	healthy := true

	check := func(name string, err error) {
		if err != nil {
			components[name] = "unhealthy"
			healthy = false
			return
		}
		components[name] = "healthy"
	}

	ctx := c.Request.Context()
	check("cache", h.cache.Ping(ctx))
	check("userdb", h.userStore.Ping(ctx))
	check("musicdb", h.musicStore.Ping(ctx))

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Components: components,
	})
}

// Ready handles the /ready endpoint.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "cache unavailable"})
		return
	}
	if err := h.userStore.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "userdb unavailable"})
		return
	}
	if err := h.musicStore.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "musicdb unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live handles the /live endpoint.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
