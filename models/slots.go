package models

import "time"

// SlotBucket is the per-(serviceId, date) container of booked slot identifiers.
// Exactly one bucket exists per pair (unique compound index); buckets are
// created lazily on first reservation and retained forever for audit.
//
// Invariant: a slot identifier appears in SlotMap if and only if it appears in
// BookedSlots, and each slot maps to at most one claim. All mutation goes
// through the slot registry.
type SlotBucket struct {
	ServiceID   string               `bson:"serviceId" json:"serviceId"`
	Date        string               `bson:"date" json:"date"` // "YYYY-MM-DD"
	BookedSlots []string             `bson:"bookedSlots" json:"bookedSlots"`
	SlotMap     map[string]SlotClaim `bson:"slotMap" json:"slotMap"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// SlotClaim ties a booked slot identifier back to its booking. While the
// booking record is still being written the claim is a pending hold: it
// carries a token and an expiry instead of a booking id, and becomes
// reclaimable once the expiry passes.
type SlotClaim struct {
	BookingID     string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	HoldToken     string    `bson:"holdToken,omitempty" json:"holdToken,omitempty"`
	HoldExpiresAt time.Time `bson:"holdExpiresAt,omitempty" json:"holdExpiresAt,omitempty"`
}

// Pending reports whether the claim is still an unconfirmed hold.
func (c SlotClaim) Pending() bool {
	return c.BookingID == "" && c.HoldToken != ""
}

// Expired reports whether a pending claim's hold has lapsed at the given time.
func (c SlotClaim) Expired(now time.Time) bool {
	return c.Pending() && c.HoldExpiresAt.Before(now)
}
