package models

import "time"

// BookingStatus is the closed set of booking lifecycle states. The allowed
// transitions between them are enforced by the lifecycle engine, not here.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAssigned   BookingStatus = "assigned"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks payment independently of the lifecycle states.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// Booking represents a customer's claim on a service slot. Records are never
// deleted; cancellation flips the status and clears the Active flag instead.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	CustomerID    string        `bson:"customerId" json:"customerId"`
	ServiceID     string        `bson:"serviceId" json:"serviceId"`
	Date          string        `bson:"date" json:"date"` // "YYYY-MM-DD"
	Slot          string        `bson:"slot" json:"slot"` // slot identifier, e.g. "09:00"
	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	WorkerID      string        `bson:"workerId,omitempty" json:"workerId,omitempty"`
	Price         float64       `bson:"price" json:"price"`
	// Active is false once the booking is cancelled. It backs the partial
	// unique index that keeps one live booking per (serviceId, date, slot).
	Active    bool      `bson:"active" json:"-"`
	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
