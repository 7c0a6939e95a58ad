package slotsRepo

import (
	"context"
	"sync"
	"time"

	"homely/models"

	"github.com/google/uuid"
)

// MemoryRegistry implements Registry with in-process buckets. It carries
// the same contract as MongoRegistry and backs tests and local runs.
//
// The mutual-exclusion boundary is the bucket, matching the document-level
// atomicity of the Mongo implementation: each bucket has its own mutex, so
// unrelated (serviceId, date) pairs never contend.
type MemoryRegistry struct {
	mu      sync.Mutex
	buckets map[bucketKey]*memoryBucket
}

type bucketKey struct {
	serviceID string
	date      string
}

type memoryBucket struct {
	mu     sync.Mutex
	claims map[string]models.SlotClaim
}

// NewMemoryRegistry returns an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{buckets: make(map[bucketKey]*memoryBucket)}
}

func (r *MemoryRegistry) bucket(serviceID, date string) *memoryBucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bucketKey{serviceID, date}
	b, ok := r.buckets[key]
	if !ok {
		b = &memoryBucket{claims: make(map[string]models.SlotClaim)}
		r.buckets[key] = b
	}
	return b
}

func (r *MemoryRegistry) Reserve(ctx context.Context, serviceID, date, slot string, holdFor time.Duration) (Hold, error) {
	b := r.bucket(serviceID, date)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if existing, ok := b.claims[slot]; ok && !existing.Expired(now) {
		return Hold{}, ErrSlotTaken
	}

	hold := Hold{
		ServiceID: serviceID,
		Date:      date,
		Slot:      slot,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(holdFor),
	}
	b.claims[slot] = models.SlotClaim{HoldToken: hold.Token, HoldExpiresAt: hold.ExpiresAt}
	return hold, nil
}

func (r *MemoryRegistry) Confirm(ctx context.Context, hold Hold, bookingID string) error {
	b := r.bucket(hold.ServiceID, hold.Date)
	b.mu.Lock()
	defer b.mu.Unlock()

	claim, ok := b.claims[hold.Slot]
	if !ok || claim.HoldToken != hold.Token {
		return ErrHoldLost
	}
	b.claims[hold.Slot] = models.SlotClaim{BookingID: bookingID}
	return nil
}

func (r *MemoryRegistry) Release(ctx context.Context, serviceID, date, slot string) error {
	b := r.bucket(serviceID, date)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.claims, slot)
	return nil
}

func (r *MemoryRegistry) ReleaseExpired(ctx context.Context, serviceID, date, slot, token string) (bool, error) {
	b := r.bucket(serviceID, date)
	b.mu.Lock()
	defer b.mu.Unlock()

	claim, ok := b.claims[slot]
	if !ok || !claim.Pending() || claim.HoldToken != token {
		return false, nil
	}
	delete(b.claims, slot)
	return true, nil
}

func (r *MemoryRegistry) ListAvailable(ctx context.Context, serviceID, date string, candidates []string) ([]string, error) {
	b := r.bucket(serviceID, date)
	b.mu.Lock()
	booked := make(map[string]struct{}, len(b.claims))
	for s := range b.claims {
		booked[s] = struct{}{}
	}
	b.mu.Unlock()

	free := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if _, ok := booked[s]; !ok {
			free = append(free, s)
		}
	}
	return free, nil
}
