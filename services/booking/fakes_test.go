package booking

import (
	"context"
	"sync"
	"time"

	bookingsRepo "homely/database/repository/bookings"
	slotsRepo "homely/database/repository/slots"
	workersRepo "homely/database/repository/workers"
	"homely/models"
	"homely/services/catalog"

	"go.uber.org/zap"
)

// fakeLedger is an in-memory bookingsRepo.Repository with the same version
// and duplicate-slot semantics as the Mongo implementation.
type fakeLedger struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	createErr error
	updateErr error
	// updateErrOnce applies updateErr only to the next Update call.
	updateErrOnce bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bookings: make(map[string]*models.Booking)}
}

func (f *fakeLedger) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.bookings {
		if existing.Active &&
			existing.ServiceID == booking.ServiceID &&
			existing.Date == booking.Date &&
			existing.Slot == booking.Slot {
			return bookingsRepo.ErrDuplicateSlot
		}
	}
	if booking.Version == 0 {
		booking.Version = 1
	}
	booking.Active = true
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeLedger) Get(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingsRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeLedger) Update(ctx context.Context, id string, mut bookingsRepo.Mutation, expectedVersion int) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		err := f.updateErr
		if f.updateErrOnce {
			f.updateErr = nil
		}
		return nil, err
	}

	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingsRepo.ErrNotFound
	}
	if b.Version != expectedVersion {
		return nil, bookingsRepo.ErrVersionConflict
	}

	if mut.Status != nil {
		b.Status = *mut.Status
	}
	if mut.PaymentStatus != nil {
		b.PaymentStatus = *mut.PaymentStatus
	}
	if mut.WorkerID != nil {
		b.WorkerID = *mut.WorkerID
	}
	if mut.Active != nil {
		b.Active = *mut.Active
	}
	b.Version++
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (f *fakeLedger) ListByCustomer(ctx context.Context, customerID string, limit int64) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// bump simulates a concurrent writer by incrementing the stored version.
func (f *fakeLedger) bump(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		b.Version++
	}
}

// fakeRoster is an in-memory workersRepo.Repository.
type fakeRoster struct {
	mu      sync.Mutex
	workers map[string]*models.Worker
}

func newFakeRoster(workers ...models.Worker) *fakeRoster {
	f := &fakeRoster{workers: make(map[string]*models.Worker)}
	for i := range workers {
		w := workers[i]
		f.workers[w.ID] = &w
	}
	return f
}

func (f *fakeRoster) Get(ctx context.Context, id string) (*models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return nil, workersRepo.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeRoster) Upsert(ctx context.Context, worker *models.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *worker
	f.workers[worker.ID] = &cp
	return nil
}

func (f *fakeRoster) Claim(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return workersRepo.ErrNotFound
	}
	if !w.Available {
		return workersRepo.ErrUnavailable
	}
	w.Available = false
	return nil
}

func (f *fakeRoster) ReleaseWorker(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return workersRepo.ErrNotFound
	}
	w.Available = true
	return nil
}

func (f *fakeRoster) ListAvailable(ctx context.Context, skill string) ([]models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Worker
	for _, w := range f.workers {
		if w.Available && w.HasSkill(skill) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeRoster) available(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	return ok && w.Available
}

// fakeCatalog serves a fixed service map.
type fakeCatalog struct {
	services map[string]catalog.ServiceInfo
}

func newFakeCatalog(services ...catalog.ServiceInfo) *fakeCatalog {
	f := &fakeCatalog{services: make(map[string]catalog.ServiceInfo)}
	for _, s := range services {
		f.services[s.ID] = s
	}
	return f
}

func (f *fakeCatalog) GetService(ctx context.Context, serviceID string) (*catalog.ServiceInfo, error) {
	s, ok := f.services[serviceID]
	if !ok {
		return nil, catalog.ErrUnknownService
	}
	return &s, nil
}

// fakeNotifier records emitted events and scheduled reclaims.
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []string
	changes   []statusChange
	reclaims  []slotsRepo.Hold
}

type statusChange struct {
	bookingID string
	from      models.BookingStatus
	to        models.BookingStatus
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, booking.ID)
	return nil
}

func (f *fakeNotifier) BookingStatusChanged(ctx context.Context, booking *models.Booking, previous models.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, statusChange{bookingID: booking.ID, from: previous, to: booking.Status})
	return nil
}

func (f *fakeNotifier) ScheduleReclaim(ctx context.Context, hold slotsRepo.Hold, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reclaims = append(f.reclaims, hold)
	return nil
}

// fakeSnapshots records snapshot invalidations.
type fakeSnapshots struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeSnapshots) InvalidateSnapshot(ctx context.Context, serviceID, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, serviceID+"/"+date)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
