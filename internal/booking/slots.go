package booking

import (
	"time"

	"github.com/courtsidehq/courtbook/internal/tenant"
)

// Slot is one bookable hour on one court, labeled by its starting hour.
type Slot struct {
	Label        string `json:"slot"`
	StartMinutes int    `json:"-"`
	Available    bool   `json:"available"`
}

// Grid maps court numbers to that court's ordered hourly slots for one date.
type Grid map[int64][]Slot

// GenerateSlots derives the bookable hourly grid for a facility on a calendar
// date. The day's window comes from the facility's per-weekday operating
// hours; one slot is emitted per whole hour in [open, close). Courts with a
// zero-width window get no slots; inactive courts are omitted entirely.
func GenerateSlots(facility *tenant.Facility, date time.Time) Grid {
	window := facility.Hours.ForDate(date)

	grid := make(Grid)
	for _, court := range facility.Courts {
		if !court.Active {
			continue
		}
		grid[court.Number] = hourlySlots(window)
	}
	return grid
}

func hourlySlots(window tenant.DayHours) []Slot {
	if window.CloseMinutes <= window.OpenMinutes {
		return []Slot{}
	}

	// A partial trailing hour is not bookable at grid granularity.
	slots := make([]Slot, 0, (window.CloseMinutes-window.OpenMinutes)/minutesPerHour)
	for start := window.OpenMinutes; start+minutesPerHour <= window.CloseMinutes; start += minutesPerHour {
		slots = append(slots, Slot{
			Label:        FormatMinutes(start),
			StartMinutes: start,
			Available:    true,
		})
	}
	return slots
}
