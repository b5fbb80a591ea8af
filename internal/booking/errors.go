package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBookingNotFound is returned for unknown booking references.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrStorageBusy marks a transient storage failure. The admission write
	// path retries these a bounded number of times; nothing else does.
	ErrStorageBusy = errors.New("storage busy")
)

// ValidationError is malformed or unacceptable input. Surfaced to the caller
// immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ConflictError carries the overlapping bookings so the caller can re-render
// availability.
type ConflictError struct {
	Conflicts []Booking
}

func (e ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, b := range e.Conflicts {
		parts[i] = fmt.Sprintf("court %d %s-%s", b.CourtNumber, b.StartTime(), b.EndTime())
	}
	return "slot already booked: " + strings.Join(parts, ", ")
}

// TransitionError is an attempt to move a booking out of a terminal status.
type TransitionError struct {
	From Status
	To   Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}
