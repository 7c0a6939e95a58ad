package slotsRepo

import (
	"context"
	"errors"
	"time"
)

// ErrSlotTaken is returned by Reserve when the slot is already held by a
// live claim in the bucket.
var ErrSlotTaken = errors.New("slot already reserved")

// ErrHoldLost is returned by Confirm when the pending hold has expired and
// been reclaimed before the booking record landed.
var ErrHoldLost = errors.New("reservation hold no longer held")

// Hold identifies a pending reservation: a slot claimed in the bucket that
// is not yet backed by a booking record. The token scopes Confirm and
// reclaim so that a late caller cannot touch somebody else's claim.
type Hold struct {
	ServiceID string
	Date      string
	Slot      string
	Token     string
	ExpiresAt time.Time
}

// Registry owns per-(serviceId, date) slot availability.
//
// Reserve is the mutual-exclusion boundary of the whole system: concurrent
// reservations of the same slot in the same bucket linearize there, and
// exactly one caller wins. Buckets for different (serviceId, date) pairs
// never contend with each other.
type Registry interface {
	// Reserve atomically claims the slot for holdFor, creating the bucket
	// lazily. Returns ErrSlotTaken if a live claim already covers the slot.
	// An expired pending claim may be taken over in the same call.
	Reserve(ctx context.Context, serviceID, date, slot string, holdFor time.Duration) (Hold, error)

	// Confirm flips the pending claim into a durable bookingId mapping.
	// Returns ErrHoldLost if the hold expired and was reclaimed first.
	Confirm(ctx context.Context, hold Hold, bookingID string) error

	// Release frees the slot. Idempotent: releasing a free slot is a no-op.
	Release(ctx context.Context, serviceID, date, slot string) error

	// ReleaseExpired frees the slot only if it still carries the given
	// pending token. Reports whether anything was released.
	ReleaseExpired(ctx context.Context, serviceID, date, slot, token string) (bool, error)

	// ListAvailable returns candidates minus the bucket's booked set. It is
	// a snapshot read and takes no reservation lock; the real guarantee is
	// enforced at Reserve time.
	ListAvailable(ctx context.Context, serviceID, date string, candidates []string) ([]string, error)
}
