package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (fee rules loaded and, when history is
//     enabled, the database reachable).
type HealthHandler struct {
	dbPing func(ctx context.Context) error
	rules  int
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - dbPing: Database ping; nil when validation history is disabled.
//   - rules: Number of loaded fee rules.
//
// Returns:
//   - *HealthHandler: Ready to Register on a router.
func NewHealthHandler(dbPing func(ctx context.Context) error, rules int) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, rules: rules}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 when ready, 503 when no fee rule is loaded or the database is not reachable.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if fee rules are loaded and the database is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]interface{}
	// @Failure      503  {object}  map[string]interface{}
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.rules == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "no fee rules loaded"})
			return
		}
		if h.dbPing != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := h.dbPing(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "rules": h.rules})
	})
}
