// Package booking holds the availability and admission core: hourly slot
// generation, half-open conflict detection, and the validated, atomic write
// path for new bookings.
package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"

	minutesPerHour = 60
	minutesPerDay  = 24 * 60
)

// Status is the booking lifecycle state. Completed and cancelled are
// terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Qualifies reports whether a booking in this status occupies its slot for
// conflict purposes. Cancelled bookings free the slot.
func (s Status) Qualifies() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further status transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Source tags where a booking originated.
type Source string

const (
	SourceWeb    Source = "web"
	SourceMobile Source = "mobile"
	SourceVendor Source = "vendor"
)

// Customer is the contact info attached to a booking.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is the canonical reservation record. Dates are plain YYYY-MM-DD
// strings with no time zone component; start and end are wall-clock minutes
// since midnight forming a half-open interval [Start, End).
type Booking struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	FacilityID   int64     `json:"facility_id"`
	CourtNumber  int64     `json:"court_number"`
	Date         string    `json:"date"`
	StartMinutes int       `json:"-"`
	EndMinutes   int       `json:"-"`
	Status       Status    `json:"status"`
	Customer     Customer  `json:"customer"`
	TotalCents   int64     `json:"total_cents"`
	DiscountCode string    `json:"discount_code,omitempty"`
	Source       Source    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// StartTime and EndTime render the wall-clock interval in wire format.
func (b Booking) StartTime() string { return FormatMinutes(b.StartMinutes) }
func (b Booking) EndTime() string   { return FormatMinutes(b.EndMinutes) }

// Clock abstracts "now" so past-date checks and expiry sweeps are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ParseDate validates a YYYY-MM-DD calendar date and returns it at midnight
// in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return parsed, nil
}

// ParseTimeOfDay parses an HH:MM wall-clock time into minutes since midnight.
// 24:00 is accepted as an end-of-day close boundary.
func ParseTimeOfDay(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%2d:%2d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("time must be in HH:MM format")
	}
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("time must be in HH:MM format")
	}
	minutes := hour*minutesPerHour + minute
	if hour < 0 || minute < 0 || minute > 59 || minutes > minutesPerDay {
		return 0, fmt.Errorf("time must be between 00:00 and 24:00")
	}
	return minutes, nil
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}
