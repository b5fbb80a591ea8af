package booking

// Overlaps reports whether two half-open wall-clock intervals [s1,e1) and
// [s2,e2) intersect. A boundary touch (e1 == s2) is not an overlap, so the
// slot immediately after a booking ends stays bookable.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// Candidate is a booking request being tested against existing reservations.
type Candidate struct {
	CourtNumber  int64
	Date         string
	StartMinutes int
	EndMinutes   int
}

// FindConflicts returns the existing bookings that overlap the candidate on
// the same court and date. Only bookings whose status still occupies the slot
// participate; cancelled bookings never conflict.
func FindConflicts(candidate Candidate, existing []Booking) []Booking {
	var conflicts []Booking
	for _, b := range existing {
		if b.CourtNumber != candidate.CourtNumber || b.Date != candidate.Date {
			continue
		}
		if !b.Status.Qualifies() {
			continue
		}
		if Overlaps(candidate.StartMinutes, candidate.EndMinutes, b.StartMinutes, b.EndMinutes) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// Conflicts reports whether the candidate overlaps any qualifying booking.
func Conflicts(candidate Candidate, existing []Booking) bool {
	return len(FindConflicts(candidate, existing)) > 0
}

// Annotate marks each generated slot unavailable when its one-hour window
// overlaps a qualifying booking on the slot's court. Bookings need not align
// to hour boundaries; the published grid is hour-granular regardless.
func Annotate(grid Grid, existing []Booking) Grid {
	byCourt := make(map[int64][]Booking, len(grid))
	for _, b := range existing {
		if !b.Status.Qualifies() {
			continue
		}
		byCourt[b.CourtNumber] = append(byCourt[b.CourtNumber], b)
	}

	for court, slots := range grid {
		bookings := byCourt[court]
		for i := range slots {
			for _, b := range bookings {
				if Overlaps(slots[i].StartMinutes, slots[i].StartMinutes+minutesPerHour, b.StartMinutes, b.EndMinutes) {
					slots[i].Available = false
					break
				}
			}
		}
		grid[court] = slots
	}
	return grid
}
