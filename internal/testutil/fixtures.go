package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/courtsidehq/courtbook/internal/db"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

// FixedClock is a Clock pinned to one instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }

// SeedFacility inserts a two-court facility open 08:00-20:00 every day and
// returns the stored aggregate.
func SeedFacility(t *testing.T, database *db.DB, slug string) *tenant.Facility {
	t.Helper()

	var hours tenant.OperatingHours
	for day := range hours {
		hours[day] = tenant.DayHours{OpenMinutes: 8 * 60, CloseMinutes: 20 * 60}
	}

	facility := &tenant.Facility{
		Slug:     slug,
		Name:     "Test Facility",
		Timezone: "UTC",
		Currency: "USD",
		Active:   true,
		Courts: []tenant.Court{
			{Number: 1, Name: "Court 1", Sport: "Badminton", Active: true},
			{Number: 2, Name: "Court 2", Sport: "Pickleball", Active: true},
		},
		Hours: hours,
	}

	id, err := database.InsertFacility(context.Background(), facility)
	if err != nil {
		t.Fatalf("seed facility: %v", err)
	}

	stored, err := database.FacilityByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load seeded facility: %v", err)
	}
	return stored
}
