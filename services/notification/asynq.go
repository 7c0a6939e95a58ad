package notification

import (
	"context"
	"fmt"
	"time"

	slotsRepo "homely/database/repository/slots"
	"homely/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqEmitter implements Service and HoldScheduler by enqueuing tasks on
// the shared Redis-backed queue; the cron worker consumes them.
type AsynqEmitter struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqEmitter wraps an asynq client.
func NewAsynqEmitter(client *asynq.Client, logger *zap.Logger) *AsynqEmitter {
	return &AsynqEmitter{Client: client, Logger: logger}
}

func (e *AsynqEmitter) BookingConfirmed(ctx context.Context, booking *models.Booking) error {
	task, err := NewBookingConfirmedTask(booking)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue booking-confirmed event: %w", err)
	}
	e.Logger.Debug("booking-confirmed event enqueued", zap.String("bookingId", booking.ID))
	return nil
}

func (e *AsynqEmitter) BookingStatusChanged(ctx context.Context, booking *models.Booking, previous models.BookingStatus) error {
	task, err := NewStatusChangedTask(booking, previous)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue status-changed event: %w", err)
	}
	e.Logger.Debug("status-changed event enqueued",
		zap.String("bookingId", booking.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(booking.Status)),
	)
	return nil
}

func (e *AsynqEmitter) ScheduleReclaim(ctx context.Context, hold slotsRepo.Hold, delay time.Duration) error {
	task, err := NewSlotReclaimTask(hold)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.ProcessIn(delay)); err != nil {
		return fmt.Errorf("failed to schedule hold reclaim: %w", err)
	}
	return nil
}
