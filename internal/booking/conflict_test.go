package booking

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 600, 660, 600, 660, true},
		{"new starts inside existing", 630, 690, 600, 660, true},
		{"new ends inside existing", 570, 630, 600, 660, true},
		{"new contains existing", 540, 720, 600, 660, true},
		{"existing contains new", 615, 645, 600, 660, true},
		{"boundary touch after", 660, 720, 600, 660, false},
		{"boundary touch before", 540, 600, 600, 660, false},
		{"disjoint", 720, 780, 600, 660, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func existingBooking(court int64, date string, start, end int, status Status) Booking {
	return Booking{
		CourtNumber:  court,
		Date:         date,
		StartMinutes: start,
		EndMinutes:   end,
		Status:       status,
	}
}

func TestFindConflicts(t *testing.T) {
	existing := []Booking{
		existingBooking(1, "2026-09-10", 840, 900, StatusPaid),      // 14:00-15:00
		existingBooking(1, "2026-09-10", 600, 660, StatusCancelled), // 10:00-11:00 cancelled
		existingBooking(2, "2026-09-10", 840, 900, StatusPending),   // other court
		existingBooking(1, "2026-09-11", 840, 900, StatusPaid),      // other date
	}

	candidate := Candidate{CourtNumber: 1, Date: "2026-09-10", StartMinutes: 870, EndMinutes: 930}
	conflicts := FindConflicts(candidate, existing)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].StartMinutes != 840 {
		t.Errorf("unexpected conflicting booking: %+v", conflicts[0])
	}
}

func TestFindConflictsCancelledExcluded(t *testing.T) {
	existing := []Booking{
		existingBooking(1, "2026-09-10", 600, 660, StatusCancelled),
	}
	candidate := Candidate{CourtNumber: 1, Date: "2026-09-10", StartMinutes: 600, EndMinutes: 660}
	if Conflicts(candidate, existing) {
		t.Error("cancelled booking should not conflict")
	}
}

func TestFindConflictsBoundaryTouch(t *testing.T) {
	existing := []Booking{
		existingBooking(1, "2026-09-10", 600, 660, StatusPaid), // 10:00-11:00
	}
	candidate := Candidate{CourtNumber: 1, Date: "2026-09-10", StartMinutes: 660, EndMinutes: 720}
	if Conflicts(candidate, existing) {
		t.Error("booking starting exactly when another ends should not conflict")
	}
}

func TestAnnotate(t *testing.T) {
	grid := Grid{
		1: {
			{Label: "08:00", StartMinutes: 480, Available: true},
			{Label: "09:00", StartMinutes: 540, Available: true},
			{Label: "10:00", StartMinutes: 600, Available: true},
		},
		2: {
			{Label: "08:00", StartMinutes: 480, Available: true},
		},
	}

	// 08:30-09:30 straddles two hourly slots on court 1.
	existing := []Booking{
		existingBooking(1, "2026-09-10", 510, 570, StatusPending),
	}

	annotated := Annotate(grid, existing)

	wantCourt1 := []bool{false, false, true}
	for i, want := range wantCourt1 {
		if annotated[1][i].Available != want {
			t.Errorf("court 1 slot %s: available = %v, want %v", annotated[1][i].Label, annotated[1][i].Available, want)
		}
	}
	if !annotated[2][0].Available {
		t.Error("court 2 should be untouched by court 1 bookings")
	}
}

func TestAnnotateIgnoresCancelled(t *testing.T) {
	grid := Grid{
		1: {{Label: "14:00", StartMinutes: 840, Available: true}},
	}
	existing := []Booking{
		existingBooking(1, "2026-09-10", 840, 900, StatusCancelled),
	}
	annotated := Annotate(grid, existing)
	if !annotated[1][0].Available {
		t.Error("cancelled booking should leave the slot available")
	}
}
