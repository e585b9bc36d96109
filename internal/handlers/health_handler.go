package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterHealthRoutes registers the process and database probes.
func RegisterHealthRoutes(r gin.IRouter, cfg HandlerConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/health/db", func(c *gin.Context) {
		status, err := cfg.Orders.Health(c.Request.Context())
		if err != nil {
			logger.Warn("database health check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "now": status.Now, "version": status.Version})
	})
}
