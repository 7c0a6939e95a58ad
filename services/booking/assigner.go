package booking

import (
	"context"
	"errors"

	bookingsRepo "homely/database/repository/bookings"
	workersRepo "homely/database/repository/workers"
	"homely/models"
	"homely/services/catalog"
	"homely/services/notification"

	"go.uber.org/zap"
)

// DefaultWorkerAssigner implements WorkerAssigner. The worker claim is a
// conditional availability flip; everything after it compensates on failure
// so a worker is never left claimed without an assignment.
type DefaultWorkerAssigner struct {
	Ledger    bookingsRepo.Repository
	Workers   workersRepo.Repository
	Catalog   catalog.Service
	Lifecycle LifecycleEngine
	Notifier  notification.Service
	Logger    *zap.Logger
}

func (a *DefaultWorkerAssigner) Assign(ctx context.Context, bookingID, workerID string) (*models.Booking, error) {
	if workerID == "" {
		return nil, newError(CodeInvalidInput, "workerId is required")
	}

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		b, err := a.Ledger.Get(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingsRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "booking %s not found", bookingID)
			}
			return nil, err
		}

		// Assigning the same worker twice is a no-op, not an error.
		if b.WorkerID == workerID && b.Status == models.StatusAssigned {
			return b, nil
		}
		if b.Status != models.StatusPending {
			if b.WorkerID != "" {
				return nil, newError(CodeAlreadyAssigned, "booking %s is already assigned to %s", bookingID, b.WorkerID)
			}
			return nil, newError(CodeInvalidTransition, "cannot assign worker to %s booking", b.Status)
		}

		worker, err := a.Workers.Get(ctx, workerID)
		if err != nil {
			if errors.Is(err, workersRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "worker %s not found", workerID)
			}
			return nil, err
		}
		skill := ""
		if svc, svcErr := a.Catalog.GetService(ctx, b.ServiceID); svcErr == nil {
			skill = svc.Skill
		}
		if !worker.HasSkill(skill) {
			return nil, newError(CodeWorkerUnavailable, "worker %s lacks skill %q", workerID, skill)
		}

		if err := a.Workers.Claim(ctx, workerID); err != nil {
			if errors.Is(err, workersRepo.ErrUnavailable) {
				return nil, newError(CodeWorkerUnavailable, "worker %s is not available", workerID)
			}
			if errors.Is(err, workersRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "worker %s not found", workerID)
			}
			return nil, err
		}

		updated, err := a.Ledger.Update(ctx, bookingID,
			bookingsRepo.Mutation{WorkerID: &workerID}, b.Version)
		if err != nil {
			a.releaseWorker(ctx, workerID)
			if errors.Is(err, bookingsRepo.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		final, err := a.Lifecycle.Transition(ctx, bookingID, models.StatusAssigned)
		if err != nil {
			// Undo the half-finished assignment.
			empty := ""
			if _, rbErr := a.Ledger.Update(ctx, bookingID,
				bookingsRepo.Mutation{WorkerID: &empty}, updated.Version); rbErr != nil {
				a.Logger.Error("failed to clear worker after transition failure",
					zap.String("bookingId", bookingID), zap.Error(rbErr))
			}
			a.releaseWorker(ctx, workerID)
			return nil, err
		}

		a.Logger.Info("worker assigned",
			zap.String("bookingId", bookingID), zap.String("workerId", workerID))
		return final, nil
	}
	return nil, newError(CodeVersionConflict, "booking %s is being updated concurrently", bookingID)
}

func (a *DefaultWorkerAssigner) Unassign(ctx context.Context, bookingID string) (*models.Booking, error) {
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		b, err := a.Ledger.Get(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingsRepo.ErrNotFound) {
				return nil, newError(CodeNotFound, "booking %s not found", bookingID)
			}
			return nil, err
		}
		// Reassignment after work has started is not allowed.
		if b.Status != models.StatusAssigned {
			return nil, newError(CodeInvalidTransition, "cannot unassign a %s booking", b.Status)
		}

		// assigned -> pending is not a public transition edge; unassign is
		// the one operation that walks it, together with clearing the
		// worker reference.
		pending := models.StatusPending
		empty := ""
		updated, err := a.Ledger.Update(ctx, bookingID,
			bookingsRepo.Mutation{Status: &pending, WorkerID: &empty}, b.Version)
		if errors.Is(err, bookingsRepo.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if b.WorkerID != "" {
			a.releaseWorker(ctx, b.WorkerID)
		}
		if a.Notifier != nil {
			if err := a.Notifier.BookingStatusChanged(ctx, updated, models.StatusAssigned); err != nil {
				a.Logger.Warn("failed to emit status-changed event",
					zap.String("bookingId", bookingID), zap.Error(err))
			}
		}
		a.Logger.Info("worker unassigned",
			zap.String("bookingId", bookingID), zap.String("workerId", b.WorkerID))
		return updated, nil
	}
	return nil, newError(CodeVersionConflict, "booking %s is being updated concurrently", bookingID)
}

func (a *DefaultWorkerAssigner) releaseWorker(ctx context.Context, workerID string) {
	if err := a.Workers.ReleaseWorker(ctx, workerID); err != nil {
		a.Logger.Error("failed to release worker",
			zap.String("workerId", workerID), zap.Error(err))
	}
}
