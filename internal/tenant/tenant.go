// Package tenant resolves external facility identifiers to facility aggregates.
package tenant

import (
	"errors"
	"time"
)

var (
	ErrFacilityNotFound = errors.New("facility not found")
)

// Facility is a tenant venue offering bookable courts. The aggregate is
// read-only from the booking core's perspective; provisioning happens
// elsewhere.
type Facility struct {
	ID       int64
	Slug     string
	Name     string
	Timezone string
	Currency string
	Active   bool

	Courts []Court
	Hours  OperatingHours
}

// Court is a single bookable unit within a facility. Courts are deactivated,
// never deleted, so historical bookings can always resolve their court number.
type Court struct {
	Number int64
	Name   string
	Sport  string
	Active bool
}

// DayHours is the open/close window for one day of the week, in minutes since
// midnight. Open == Close means the facility is closed that day.
type DayHours struct {
	OpenMinutes  int
	CloseMinutes int
}

// OperatingHours holds one window per weekday, indexed by time.Weekday.
type OperatingHours [7]DayHours

// ForDate returns the operating window for the given calendar date.
func (h OperatingHours) ForDate(date time.Time) DayHours {
	return h[date.Weekday()]
}

// ActiveCourts returns the facility's active courts in stored order.
func (f *Facility) ActiveCourts() []Court {
	courts := make([]Court, 0, len(f.Courts))
	for _, c := range f.Courts {
		if c.Active {
			courts = append(courts, c)
		}
	}
	return courts
}

// CourtByNumber looks up a court by its facility-scoped number.
func (f *Facility) CourtByNumber(number int64) (Court, bool) {
	for _, c := range f.Courts {
		if c.Number == number {
			return c, true
		}
	}
	return Court{}, false
}

// Location returns the facility's time zone, falling back to UTC when the
// stored zone name does not load.
func (f *Facility) Location() *time.Location {
	if f.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
