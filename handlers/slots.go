package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAvailableSlots handles GET /api/service/:id/slots?date=YYYY-MM-DD.
func (h *BookingHandler) GetAvailableSlots(c *gin.Context) {
	serviceID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing date", "message": "query parameter date is required"})
		return
	}

	slots, err := h.Availability.ListAvailable(c.Request.Context(), serviceID, date)
	if err != nil {
		h.respondError(c, "GetAvailableSlots", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"serviceId": serviceID,
		"date":      date,
		"slots":     slots,
	})
}
