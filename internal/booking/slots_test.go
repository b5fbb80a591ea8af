package booking

import (
	"testing"
	"time"

	"github.com/courtsidehq/courtbook/internal/tenant"
)

func testFacility() *tenant.Facility {
	f := &tenant.Facility{
		ID:       1,
		Slug:     "downtown-courts",
		Name:     "Downtown Courts",
		Timezone: "UTC",
		Active:   true,
		Courts: []tenant.Court{
			{Number: 1, Name: "Court 1", Sport: "badminton", Active: true},
			{Number: 2, Name: "Court 2", Sport: "pickleball", Active: true},
			{Number: 3, Name: "Court 3", Sport: "badminton", Active: false},
		},
	}
	for d := range f.Hours {
		f.Hours[d] = tenant.DayHours{OpenMinutes: 480, CloseMinutes: 1200} // 08:00-20:00
	}
	return f
}

func TestGenerateSlots(t *testing.T) {
	f := testFacility()
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	grid := GenerateSlots(f, date)

	if _, ok := grid[3]; ok {
		t.Error("inactive court should not appear in the grid")
	}
	if len(grid) != 2 {
		t.Fatalf("expected 2 courts, got %d", len(grid))
	}
	slots := grid[1]
	if len(slots) != 12 {
		t.Fatalf("expected 12 hourly slots for 08:00-20:00, got %d", len(slots))
	}
	if slots[0].Label != "08:00" || slots[0].StartMinutes != 480 {
		t.Errorf("first slot = %+v, want 08:00", slots[0])
	}
	if slots[11].Label != "19:00" {
		t.Errorf("last slot label = %q, want 19:00", slots[11].Label)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s should start available", s.Label)
		}
	}
}

func TestGenerateSlotsClosedDay(t *testing.T) {
	f := testFacility()
	// Sunday closed.
	f.Hours[time.Sunday] = tenant.DayHours{}
	sunday := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	grid := GenerateSlots(f, sunday)
	for court, slots := range grid {
		if len(slots) != 0 {
			t.Errorf("court %d: expected no slots on a closed day, got %d", court, len(slots))
		}
	}
}

func TestGenerateSlotsPartialTrailingHour(t *testing.T) {
	f := testFacility()
	for d := range f.Hours {
		f.Hours[d] = tenant.DayHours{OpenMinutes: 540, CloseMinutes: 630} // 09:00-10:30
	}
	grid := GenerateSlots(f, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	slots := grid[1]
	if len(slots) != 1 {
		t.Fatalf("expected 1 whole-hour slot, got %d", len(slots))
	}
	if slots[0].Label != "09:00" {
		t.Errorf("slot label = %q, want 09:00", slots[0].Label)
	}
}
