package bookingsRepo

import (
	"context"
	"errors"

	"homely/models"
)

var (
	// ErrNotFound is returned when no booking carries the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrVersionConflict is returned by Update when another writer got in
	// first; the caller re-reads and retries.
	ErrVersionConflict = errors.New("booking version conflict")
	// ErrDuplicateSlot is returned by Create when a non-cancelled booking
	// already references the same (serviceId, date, slot). Defense in depth
	// under the slot registry.
	ErrDuplicateSlot = errors.New("active booking already exists for slot")
)

// Mutation is a field-level booking update. Nil fields are left untouched;
// an empty WorkerID clears the assignment.
type Mutation struct {
	Status        *models.BookingStatus
	PaymentStatus *models.PaymentStatus
	WorkerID      *string
	Active        *bool
}

// Repository is the durable booking ledger. Records are appended and
// updated under optimistic concurrency, never deleted.
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	// Update applies the mutation only if the stored version still matches
	// expectedVersion, bumping the version and updatedAt on success.
	Update(ctx context.Context, id string, mut Mutation, expectedVersion int) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string, limit int64) ([]models.Booking, error)
}
