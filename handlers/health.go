package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homely/utils"
)

// HealthHandler serves the dependency health snapshot.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
