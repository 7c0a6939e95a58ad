package booking

import (
	"context"

	"homely/models"
)

// ReservationCoordinator turns a (service, date, slot) request into an
// exclusively held booking.
type ReservationCoordinator interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
}

// LifecycleEngine enforces the booking status state machine and the
// payment-status gating.
type LifecycleEngine interface {
	Transition(ctx context.Context, id string, target models.BookingStatus) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Booking, error)
}

// WorkerAssigner matches workers to bookings under skill and availability
// constraints.
type WorkerAssigner interface {
	Assign(ctx context.Context, bookingID, workerID string) (*models.Booking, error)
	Unassign(ctx context.Context, bookingID string) (*models.Booking, error)
}

// AvailabilityService serves the read path for free slots.
type AvailabilityService interface {
	ListAvailable(ctx context.Context, serviceID, date string) ([]string, error)
}

// SnapshotInvalidator drops a cached availability snapshot after a write.
// Best-effort: the snapshot is short-lived anyway.
type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context, serviceID, date string)
}
