package notification

import (
	"context"
	"time"

	slotsRepo "homely/database/repository/slots"
	"homely/models"
)

// Service emits booking lifecycle events to the delivery collaborator.
// Delivery mechanics (push, email, SMS) live outside the core; the core
// only hands events off.
type Service interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking) error
	BookingStatusChanged(ctx context.Context, booking *models.Booking, previous models.BookingStatus) error
}

// HoldScheduler schedules the delayed reclaim of a reservation hold. If the
// hold is still pending when the task fires, the slot is released.
type HoldScheduler interface {
	ScheduleReclaim(ctx context.Context, hold slotsRepo.Hold, delay time.Duration) error
}
