package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// GetHealth handles GET /health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "rotation-planner",
		"timestamp": time.Now().UTC(),
	})
}

// GetReady handles GET /ready.
func (h *HealthHandler) GetReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
