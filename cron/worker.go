package cron

import (
	"context"
	"encoding/json"
	"time"

	"homely/config"
	slotsRepo "homely/database/repository/slots"
	"homely/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker consumes the background queue: delayed slot-reclaim tasks and
// booking events handed off to the delivery collaborator.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker builds the asynq server and registers the handlers.
func NewWorker(cfg *config.Config, registry slotsRepo.Registry, logger *zap.Logger) *Worker {
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeSlotReclaim, handleSlotReclaim(registry, logger))
	mux.HandleFunc(notification.TypeBookingConfirmed, handleBookingEvent(logger, "booking confirmed"))
	mux.HandleFunc(notification.TypeBookingStatusChanged, handleBookingEvent(logger, "booking status changed"))

	return &Worker{srv: srv, mux: mux, logger: logger}
}

// Run starts the worker in the background, retrying startup with backoff.
func (w *Worker) Run() {
	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := w.srv.Run(w.mux); err != nil {
				w.logger.Error("booking worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))
				if attempts == maxAttempts {
					w.logger.Fatal("booking worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

// handleSlotReclaim frees a reservation hold that was never followed by a
// booking write. The registry only releases if the slot still carries the
// task's pending token, so confirmed bookings are untouched.
func handleSlotReclaim(registry slotsRepo.Registry, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p notification.SlotReclaimPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reclaim payload", zap.Error(err))
			return err
		}

		released, err := registry.ReleaseExpired(ctx, p.ServiceID, p.Date, p.Slot, p.Token)
		if err != nil {
			logger.Error("failed to reclaim slot",
				zap.String("serviceId", p.ServiceID),
				zap.String("date", p.Date),
				zap.String("slot", p.Slot),
				zap.Error(err))
			return err
		}
		if released {
			logger.Warn("reclaimed orphaned slot hold",
				zap.String("serviceId", p.ServiceID),
				zap.String("date", p.Date),
				zap.String("slot", p.Slot))
		}
		return nil
	}
}

// handleBookingEvent hands a booking event off to the delivery
// collaborator. Actual push/email delivery lives outside the core.
func handleBookingEvent(logger *zap.Logger, what string) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p notification.BookingEventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid booking event payload", zap.Error(err))
			return err
		}
		logger.Info(what,
			zap.String("bookingId", p.BookingID),
			zap.String("customerId", p.CustomerID),
			zap.String("status", string(p.Status)),
			zap.String("previousStatus", string(p.PreviousStatus)),
		)
		return nil
	}
}
