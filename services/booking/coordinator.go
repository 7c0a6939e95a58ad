package booking

import (
	"context"
	"errors"
	"time"

	bookingsRepo "homely/database/repository/bookings"
	slotsRepo "homely/database/repository/slots"
	"homely/models"
	"homely/services/catalog"
	"homely/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Extra slack before a scheduled reclaim fires, so a confirm racing the
// timeout always lands first.
const reclaimGrace = 5 * time.Second

// DefaultCoordinator implements ReservationCoordinator: reserve the slot,
// write the ledger record, confirm the hold, roll back on failure.
type DefaultCoordinator struct {
	Registry    slotsRepo.Registry
	Ledger      bookingsRepo.Repository
	Catalog     catalog.Service
	Notifier    notification.Service
	Holds       notification.HoldScheduler
	Snapshots   SnapshotInvalidator
	HoldTimeout time.Duration
	Logger      *zap.Logger
}

func (c *DefaultCoordinator) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	svc, err := c.Catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownService) {
			return nil, newError(CodeNotFound, "service %s not found", req.ServiceID)
		}
		return nil, err
	}
	if !containsSlot(svc.Slots, req.Slot) {
		return nil, newError(CodeInvalidInput, "slot %q is not offered by service %s", req.Slot, req.ServiceID)
	}

	hold, err := c.Registry.Reserve(ctx, req.ServiceID, req.Date, req.Slot, c.HoldTimeout)
	if err != nil {
		if errors.Is(err, slotsRepo.ErrSlotTaken) {
			return nil, newError(CodeSlotConflict, "slot %s on %s is already booked", req.Slot, req.Date)
		}
		return nil, err
	}

	// Safety net for a crash between here and the ledger write: the worker
	// frees the hold after the timeout if it is still pending.
	if c.Holds != nil {
		if err := c.Holds.ScheduleReclaim(ctx, hold, c.HoldTimeout+reclaimGrace); err != nil {
			c.Logger.Warn("failed to schedule hold reclaim",
				zap.String("slot", req.Slot), zap.Error(err))
		}
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    req.CustomerID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Slot:          req.Slot,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		Price:         svc.Price,
	}
	if err := c.Ledger.Create(ctx, booking); err != nil {
		// The slot must not stay claimed without a record behind it.
		if relErr := c.Registry.Release(ctx, req.ServiceID, req.Date, req.Slot); relErr != nil {
			c.Logger.Error("failed to roll back slot reservation; hold reclaim will free it",
				zap.String("slot", req.Slot), zap.Error(relErr))
		}
		if errors.Is(err, bookingsRepo.ErrDuplicateSlot) {
			return nil, newError(CodeSlotConflict, "slot %s on %s is already booked", req.Slot, req.Date)
		}
		return nil, err
	}

	if err := c.Registry.Confirm(ctx, hold, booking.ID); err != nil {
		// The hold lapsed and was reclaimed before the record landed; the
		// slot may already belong to someone else. Retire the record.
		cancelled := models.StatusCancelled
		inactive := false
		if _, rbErr := c.Ledger.Update(ctx, booking.ID,
			bookingsRepo.Mutation{Status: &cancelled, Active: &inactive}, booking.Version); rbErr != nil {
			c.Logger.Error("failed to retire booking after lost hold",
				zap.String("bookingId", booking.ID), zap.Error(rbErr))
		}
		return nil, newError(CodeSlotConflict, "reservation hold expired before confirmation")
	}

	if c.Snapshots != nil {
		c.Snapshots.InvalidateSnapshot(ctx, req.ServiceID, req.Date)
	}
	if c.Notifier != nil {
		if err := c.Notifier.BookingConfirmed(ctx, booking); err != nil {
			c.Logger.Warn("failed to emit booking-confirmed event",
				zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}

	c.Logger.Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("serviceId", booking.ServiceID),
		zap.String("date", booking.Date),
		zap.String("slot", booking.Slot),
	)
	return booking, nil
}

func (c *DefaultCoordinator) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := c.Ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, bookingsRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "booking %s not found", id)
		}
		return nil, err
	}
	return booking, nil
}

// listLimit caps customer history reads; older records stay queryable
// through the store directly.
const listLimit = 100

func (c *DefaultCoordinator) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	if customerID == "" {
		return nil, newError(CodeInvalidInput, "customerId is required")
	}
	return c.Ledger.ListByCustomer(ctx, customerID, listLimit)
}

func validateRequest(req models.BookingRequest) error {
	if req.ServiceID == "" || req.Date == "" || req.Slot == "" || req.CustomerID == "" {
		return newError(CodeInvalidInput, "serviceId, date, slot and customerId are required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return newError(CodeInvalidInput, "date %q is not in YYYY-MM-DD format", req.Date)
	}
	return nil
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
