package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthRoutes registers liveness and readiness probes.
//
// GET /api/v1/healthz - process is up
// GET /api/v1/readyz  - store is reachable
// GET /               - legacy status probe
func RegisterHealthRoutes(r gin.IRoutes, st Pinger, logger *slog.Logger) {
	r.GET("/api/v1/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})

	r.GET("/api/v1/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "NOT READY"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "READY"})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"Status": "Up"})
	})
}
