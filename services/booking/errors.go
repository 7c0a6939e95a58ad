package booking

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers. The HTTP layer maps them onto 4xx
// statuses; nothing below the service layer knows about HTTP.
const (
	CodeSlotConflict      = "slotConflict"
	CodeInvalidTransition = "invalidTransition"
	CodeWorkerUnavailable = "workerUnavailable"
	CodeAlreadyAssigned   = "alreadyAssigned"
	CodeVersionConflict   = "versionConflict"
	CodeNotFound          = "notFound"
	CodeBookingCancelled  = "bookingCancelled"
	CodeInvalidInput      = "invalidInput"
)

// Error is the typed failure returned by the booking services.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches errors by code so callers can compare against the sentinels
// below with errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrSlotConflict      = &Error{Code: CodeSlotConflict, Message: "slot already booked"}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrWorkerUnavailable = &Error{Code: CodeWorkerUnavailable, Message: "worker not available"}
	ErrAlreadyAssigned   = &Error{Code: CodeAlreadyAssigned, Message: "booking already has a worker"}
	ErrVersionConflict   = &Error{Code: CodeVersionConflict, Message: "concurrent update, please retry"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrBookingCancelled  = &Error{Code: CodeBookingCancelled, Message: "booking is cancelled"}
	ErrInvalidInput      = &Error{Code: CodeInvalidInput, Message: "invalid input"}
)

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the service error code, or empty for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
