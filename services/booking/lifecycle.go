package booking

import (
	"context"
	"errors"
	"fmt"

	bookingsRepo "homely/database/repository/bookings"
	slotsRepo "homely/database/repository/slots"
	workersRepo "homely/database/repository/workers"
	"homely/models"
	"homely/services/notification"

	"go.uber.org/zap"
)

// Optimistic-concurrency retries before surfacing a version conflict.
// Contention on a single booking is rare, so a small bound is enough.
const maxMutationRetries = 3

// transitions is the complete status state machine. Anything not listed is
// rejected; completed and cancelled are terminal.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:    {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:   {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

// CanTransition reports whether the edge from -> to is in the table.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultLifecycleEngine implements LifecycleEngine over the ledger, the
// slot registry and the worker roster.
type DefaultLifecycleEngine struct {
	Ledger    bookingsRepo.Repository
	Registry  slotsRepo.Registry
	Workers   workersRepo.Repository
	Notifier  notification.Service
	Snapshots SnapshotInvalidator
	Logger    *zap.Logger
}

func (e *DefaultLifecycleEngine) Transition(ctx context.Context, id string, target models.BookingStatus) (*models.Booking, error) {
	if !target.Valid() {
		return nil, newError(CodeInvalidTransition, "unknown status %q", target)
	}

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		b, err := e.Ledger.Get(ctx, id)
		if err != nil {
			if errors.Is(err, bookingsRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "booking %s not found", id)
			}
			return nil, err
		}
		if !CanTransition(b.Status, target) {
			return nil, newError(CodeInvalidTransition, "cannot transition booking from %s to %s", b.Status, target)
		}

		var updated *models.Booking
		if target == models.StatusCancelled {
			updated, err = e.cancel(ctx, b)
		} else {
			updated, err = e.Ledger.Update(ctx, id, bookingsRepo.Mutation{Status: &target}, b.Version)
		}
		if errors.Is(err, bookingsRepo.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		e.notifyStatus(ctx, updated, b.Status)
		return updated, nil
	}
	return nil, newError(CodeVersionConflict, "booking %s is being updated concurrently", id)
}

// Cancel is Transition to cancelled.
func (e *DefaultLifecycleEngine) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	return e.Transition(ctx, id, models.StatusCancelled)
}

// cancel flips the status and releases the slot as one logical operation.
// If the release fails the status change is compensated, so the booking
// never ends up cancelled while still holding its slot.
func (e *DefaultLifecycleEngine) cancel(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	cancelled := models.StatusCancelled
	inactive := false
	updated, err := e.Ledger.Update(ctx, b.ID,
		bookingsRepo.Mutation{Status: &cancelled, Active: &inactive}, b.Version)
	if err != nil {
		return nil, err
	}

	if err := e.Registry.Release(ctx, b.ServiceID, b.Date, b.Slot); err != nil {
		prev := b.Status
		active := true
		if _, rbErr := e.Ledger.Update(ctx, b.ID,
			bookingsRepo.Mutation{Status: &prev, Active: &active}, updated.Version); rbErr != nil {
			e.Logger.Error("failed to restore booking status after release failure",
				zap.String("bookingId", b.ID), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("failed to release slot for cancelled booking %s: %w", b.ID, err)
	}

	// A cancelled booking frees its worker; the assignment stays on the
	// record for history.
	if b.WorkerID != "" && e.Workers != nil {
		if err := e.Workers.ReleaseWorker(ctx, b.WorkerID); err != nil {
			e.Logger.Warn("failed to release worker on cancellation",
				zap.String("workerId", b.WorkerID), zap.Error(err))
		}
	}
	if e.Snapshots != nil {
		e.Snapshots.InvalidateSnapshot(ctx, b.ServiceID, b.Date)
	}
	return updated, nil
}

func (e *DefaultLifecycleEngine) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, newError(CodeInvalidInput, "unknown payment status %q", status)
	}

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		b, err := e.Ledger.Get(ctx, id)
		if err != nil {
			if errors.Is(err, bookingsRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "booking %s not found", id)
			}
			return nil, err
		}
		// A cancelled booking's payment is settled by the external refund
		// process, never through this path.
		if b.Status == models.StatusCancelled {
			return nil, newError(CodeBookingCancelled, "cannot change payment on cancelled booking %s", id)
		}
		if b.PaymentStatus == status {
			return b, nil
		}

		updated, err := e.Ledger.Update(ctx, id, bookingsRepo.Mutation{PaymentStatus: &status}, b.Version)
		if errors.Is(err, bookingsRepo.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		e.Logger.Info("payment status updated",
			zap.String("bookingId", id), zap.String("paymentStatus", string(status)))
		return updated, nil
	}
	return nil, newError(CodeVersionConflict, "booking %s is being updated concurrently", id)
}

func (e *DefaultLifecycleEngine) notifyStatus(ctx context.Context, b *models.Booking, previous models.BookingStatus) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.BookingStatusChanged(ctx, b, previous); err != nil {
		e.Logger.Warn("failed to emit status-changed event",
			zap.String("bookingId", b.ID), zap.Error(err))
	}
}
