package routes

import (
	"github.com/gin-gonic/gin"

	"homely/handlers"
)

// RegisterBookingRoutes sets up the endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.POST("", bh.CreateBooking)
		bookingGroup.GET("/:id", bh.GetBooking)
		bookingGroup.POST("/:id/cancel", bh.CancelBooking)
		bookingGroup.PATCH("/:id/status", bh.UpdateStatus)
		bookingGroup.PATCH("/:id/payment", bh.UpdatePayment)
		bookingGroup.PATCH("/:id/assign-worker", bh.AssignWorker)
		bookingGroup.POST("/:id/unassign-worker", bh.UnassignWorker)
	}

	r.GET("/api/customer/:id/bookings", bh.ListCustomerBookings)
}

// RegisterAvailabilityRoutes sets up the read path for free slots.
func RegisterAvailabilityRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	r.GET("/api/service/:id/slots", bh.GetAvailableSlots)
}
