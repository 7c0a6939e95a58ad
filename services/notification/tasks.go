package notification

import (
	"encoding/json"
	"fmt"

	slotsRepo "homely/database/repository/slots"
	"homely/models"

	"github.com/hibiken/asynq"
)

// Task types handled by the background worker.
const (
	TypeBookingConfirmed     = "booking:confirmed"
	TypeBookingStatusChanged = "booking:status_changed"
	TypeSlotReclaim          = "slot:reclaim"
)

// BookingEventPayload carries a booking event to the delivery collaborator.
type BookingEventPayload struct {
	BookingID      string               `json:"bookingId"`
	CustomerID     string               `json:"customerId"`
	ServiceID      string               `json:"serviceId"`
	Date           string               `json:"date"`
	Slot           string               `json:"slot"`
	Status         models.BookingStatus `json:"status"`
	PreviousStatus models.BookingStatus `json:"previousStatus,omitempty"`
	WorkerID       string               `json:"workerId,omitempty"`
}

// SlotReclaimPayload identifies a pending hold eligible for reclaim.
type SlotReclaimPayload struct {
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Token     string `json:"token"`
}

// NewBookingConfirmedTask builds the task emitted after a successful create.
func NewBookingConfirmedTask(booking *models.Booking) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingEventPayload{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ServiceID:  booking.ServiceID,
		Date:       booking.Date,
		Slot:       booking.Slot,
		Status:     booking.Status,
		WorkerID:   booking.WorkerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return asynq.NewTask(TypeBookingConfirmed, payload), nil
}

// NewStatusChangedTask builds the task emitted after a lifecycle transition.
func NewStatusChangedTask(booking *models.Booking, previous models.BookingStatus) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingEventPayload{
		BookingID:      booking.ID,
		CustomerID:     booking.CustomerID,
		ServiceID:      booking.ServiceID,
		Date:           booking.Date,
		Slot:           booking.Slot,
		Status:         booking.Status,
		PreviousStatus: previous,
		WorkerID:       booking.WorkerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status event: %w", err)
	}
	return asynq.NewTask(TypeBookingStatusChanged, payload), nil
}

// NewSlotReclaimTask builds the delayed task that frees an orphaned hold.
func NewSlotReclaimTask(hold slotsRepo.Hold) (*asynq.Task, error) {
	payload, err := json.Marshal(SlotReclaimPayload{
		ServiceID: hold.ServiceID,
		Date:      hold.Date,
		Slot:      hold.Slot,
		Token:     hold.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reclaim payload: %w", err)
	}
	return asynq.NewTask(TypeSlotReclaim, payload), nil
}
