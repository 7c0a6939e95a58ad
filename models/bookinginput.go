package models

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	ServiceID  string `json:"serviceId" binding:"required"`
	Date       string `json:"date" binding:"required"` // "YYYY-MM-DD"
	Slot       string `json:"slot" binding:"required"`
	CustomerID string `json:"customerId" binding:"required"`
}

// StatusUpdateRequest is the payload for a lifecycle transition.
type StatusUpdateRequest struct {
	TargetStatus BookingStatus `json:"targetStatus" binding:"required"`
}

// AssignWorkerRequest is the payload for assigning a worker to a booking.
type AssignWorkerRequest struct {
	WorkerID string `json:"workerId" binding:"required"`
}

// PaymentUpdateRequest is the payload for marking a booking paid or pending.
type PaymentUpdateRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required"`
}
