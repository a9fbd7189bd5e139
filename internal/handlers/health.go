package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/reclaim/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer reports how many entries a loaded reference set holds.
type Sizer interface {
	Len() int
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db        Pinger
	postal    Sizer
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// server runs without a target database.
func NewHealthHandler(db Pinger, postal Sizer, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		postal:    postal,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	PostalCodes int    `json:"postal_codes"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It never checks dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready.
// Returns 503 when the postal code index is empty or a configured database is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := ReadyResponse{Status: "ready", Database: "not_configured"}
	if h.postal != nil {
		resp.PostalCodes = h.postal.Len()
	}
	healthy := resp.PostalCodes > 0

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		resp.Database = "connected"
		if err := h.db.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
			resp.Database = "disconnected"
			healthy = false
		}
	}

	if !healthy {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
