package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homely/models"
	"homely/services/booking"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Coordinator  booking.ReservationCoordinator
	Lifecycle    booking.LifecycleEngine
	Assigner     booking.WorkerAssigner
	Availability booking.AvailabilityService
	Logger       *zap.Logger
}

// CreateBooking handles POST /api/booking.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	created, err := h.Coordinator.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "CreateBooking", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetBooking handles GET /api/booking/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	b, err := h.Coordinator.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "GetBooking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListCustomerBookings handles GET /api/customer/:id/bookings.
func (h *BookingHandler) ListCustomerBookings(c *gin.Context) {
	customerID := c.Param("id")
	bookings, err := h.Coordinator.ListCustomerBookings(c.Request.Context(), customerID)
	if err != nil {
		h.respondError(c, "ListCustomerBookings", err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// UpdateStatus handles PATCH /api/booking/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	if !req.TargetStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status", "message": "unknown target status: " + string(req.TargetStatus)})
		return
	}

	updated, err := h.Lifecycle.Transition(c.Request.Context(), id, req.TargetStatus)
	if err != nil {
		h.respondError(c, "UpdateStatus", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CancelBooking handles POST /api/booking/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id := c.Param("id")
	cancelled, err := h.Lifecycle.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "CancelBooking", err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// UpdatePayment handles PATCH /api/booking/:id/payment.
func (h *BookingHandler) UpdatePayment(c *gin.Context) {
	id := c.Param("id")

	var req models.PaymentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	if !req.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment status", "message": "unknown payment status: " + string(req.PaymentStatus)})
		return
	}

	updated, err := h.Lifecycle.SetPaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		h.respondError(c, "UpdatePayment", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AssignWorker handles PATCH /api/booking/:id/assign-worker.
func (h *BookingHandler) AssignWorker(c *gin.Context) {
	id := c.Param("id")

	var req models.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	updated, err := h.Assigner.Assign(c.Request.Context(), id, req.WorkerID)
	if err != nil {
		h.respondError(c, "AssignWorker", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UnassignWorker handles POST /api/booking/:id/unassign-worker.
func (h *BookingHandler) UnassignWorker(c *gin.Context) {
	id := c.Param("id")
	updated, err := h.Assigner.Unassign(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "UnassignWorker", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// respondError maps service error codes onto HTTP statuses.
func (h *BookingHandler) respondError(c *gin.Context, op string, err error) {
	var svcErr *booking.Error
	if !errors.As(err, &svcErr) {
		h.Logger.Error(op+": unexpected failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "message": "something went wrong"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case booking.CodeSlotConflict, booking.CodeVersionConflict,
		booking.CodeWorkerUnavailable, booking.CodeAlreadyAssigned,
		booking.CodeInvalidTransition, booking.CodeBookingCancelled:
		status = http.StatusConflict
	case booking.CodeNotFound:
		status = http.StatusNotFound
	case booking.CodeInvalidInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error(op+": failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": svcErr.Code, "message": svcErr.Message})
}
