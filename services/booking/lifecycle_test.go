package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingsRepo "homely/database/repository/bookings"
	slotsRepo "homely/database/repository/slots"
	"homely/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRegistry wraps a registry and fails Release on demand.
type failingRegistry struct {
	slotsRepo.Registry
	releaseErr error
}

func (f *failingRegistry) Release(ctx context.Context, serviceID, date, slot string) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	return f.Registry.Release(ctx, serviceID, date, slot)
}

func newTestLifecycle(ledger *fakeLedger, registry slotsRepo.Registry, roster *fakeRoster) (*DefaultLifecycleEngine, *fakeNotifier, *fakeSnapshots) {
	notifier := &fakeNotifier{}
	snapshots := &fakeSnapshots{}
	engine := &DefaultLifecycleEngine{
		Ledger:    ledger,
		Registry:  registry,
		Workers:   roster,
		Notifier:  notifier,
		Snapshots: snapshots,
		Logger:    testLogger(),
	}
	return engine, notifier, snapshots
}

// seedBooking writes a booking straight into the ledger and claims its slot.
func seedBooking(t *testing.T, ledger *fakeLedger, registry slotsRepo.Registry, status models.BookingStatus, workerID string) *models.Booking {
	t.Helper()
	ctx := context.Background()

	b := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    "C1",
		ServiceID:     "S1",
		Date:          "2025-03-01",
		Slot:          "09:00",
		Status:        status,
		PaymentStatus: models.PaymentPending,
		WorkerID:      workerID,
		Price:         80,
	}
	require.NoError(t, ledger.Create(ctx, b))

	hold, err := registry.Reserve(ctx, b.ServiceID, b.Date, b.Slot, time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Confirm(ctx, hold, b.ID))
	return b
}

func TestTransitionTable(t *testing.T) {
	all := []models.BookingStatus{
		models.StatusPending, models.StatusAssigned, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	}
	allowed := map[[2]models.BookingStatus]bool{
		{models.StatusPending, models.StatusAssigned}:     true,
		{models.StatusPending, models.StatusCancelled}:    true,
		{models.StatusAssigned, models.StatusInProgress}:  true,
		{models.StatusAssigned, models.StatusCancelled}:   true,
		{models.StatusInProgress, models.StatusCompleted}: true,
		{models.StatusInProgress, models.StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.BookingStatus{from, to}], CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestTransitionHappyPath(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, notifier, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusAssigned, "W7")

	updated, err := engine.Transition(ctx, b.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, 2, updated.Version)

	updated, err = engine.Transition(ctx, b.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	require.Len(t, notifier.changes, 2)
	assert.Equal(t, statusChange{bookingID: b.ID, from: models.StatusAssigned, to: models.StatusInProgress}, notifier.changes[0])
	assert.Equal(t, statusChange{bookingID: b.ID, from: models.StatusInProgress, to: models.StatusCompleted}, notifier.changes[1])
}

func TestTransitionRejectsInvalidEdge(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusPending, "")

	_, err := engine.Transition(ctx, b.ID, models.StatusCompleted)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	// The booking is untouched.
	stored, err := ledger.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestTransitionUnknownBooking(t *testing.T) {
	ledger := newFakeLedger()
	engine, _, _ := newTestLifecycle(ledger, slotsRepo.NewMemoryRegistry(), newFakeRoster())

	_, err := engine.Transition(context.Background(), "missing", models.StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestTransitionRetriesOnVersionConflict(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusAssigned, "")
	ledger.updateErr = bookingsRepo.ErrVersionConflict
	ledger.updateErrOnce = true

	updated, err := engine.Transition(ctx, b.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
}

func TestCancelReleasesSlotAndWorker(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	roster := newFakeRoster(models.Worker{ID: "W7", Name: "Dana", Available: false})
	engine, _, snapshots := newTestLifecycle(ledger, registry, roster)
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusAssigned, "W7")

	cancelled, err := engine.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	// The assignment stays on the record for history.
	assert.Equal(t, "W7", cancelled.WorkerID)

	// Slot is reservable again.
	_, err = registry.Reserve(ctx, b.ServiceID, b.Date, b.Slot, time.Minute)
	assert.NoError(t, err)

	// Worker is back in the pool.
	assert.True(t, roster.available("W7"))
	assert.Equal(t, []string{"S1/2025-03-01"}, snapshots.invalidated)
}

func TestCancelOfTerminalBooking(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusCompleted, "")

	_, err := engine.Cancel(ctx, b.ID)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestCancelCompensatesWhenReleaseFails(t *testing.T) {
	ledger := newFakeLedger()
	inner := slotsRepo.NewMemoryRegistry()
	registry := &failingRegistry{Registry: inner, releaseErr: errors.New("registry down")}
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, inner, models.StatusPending, "")

	_, err := engine.Cancel(ctx, b.ID)
	require.Error(t, err)

	// The status change was rolled back: the booking still holds its slot
	// and is not cancelled.
	stored, err := ledger.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.True(t, stored.Active)

	_, err = inner.Reserve(ctx, b.ServiceID, b.Date, b.Slot, time.Minute)
	assert.ErrorIs(t, err, slotsRepo.ErrSlotTaken)
}

func TestSetPaymentStatus(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusPending, "")

	updated, err := engine.SetPaymentStatus(ctx, b.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, 2, updated.Version)

	// Same status again is a no-op, no version bump.
	same, err := engine.SetPaymentStatus(ctx, b.ID, models.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, 2, same.Version)
}

func TestSetPaymentStatusOnCancelledBooking(t *testing.T) {
	ledger := newFakeLedger()
	registry := slotsRepo.NewMemoryRegistry()
	engine, _, _ := newTestLifecycle(ledger, registry, newFakeRoster())
	ctx := context.Background()

	b := seedBooking(t, ledger, registry, models.StatusPending, "")
	_, err := engine.Cancel(ctx, b.ID)
	require.NoError(t, err)

	_, err = engine.SetPaymentStatus(ctx, b.ID, models.PaymentPaid)
	require.Error(t, err)
	assert.Equal(t, CodeBookingCancelled, CodeOf(err))
}
