package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/courtsidehq/courtbook/internal/tenant"
)

// Store is the booking read path the availability projector needs. Only
// bookings whose status still occupies a slot are returned.
type Store interface {
	ListQualifying(ctx context.Context, facilityID int64, date string) ([]Booking, error)
}

// Availability is the per-court per-slot projection for one facility and date.
type Availability struct {
	FacilityID   int64           `json:"facility_id"`
	FacilitySlug string          `json:"facility_slug"`
	FacilityName string          `json:"facility_name"`
	Date         string          `json:"date"`
	Courts       map[int64][]Slot `json:"courts"`
}

// AvailabilityService is the read path: resolve tenant, generate the grid,
// annotate it against stored bookings.
type AvailabilityService struct {
	resolver *tenant.Resolver
	store    Store
	logger   zerolog.Logger
}

func NewAvailabilityService(resolver *tenant.Resolver, store Store, logger zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{resolver: resolver, store: store, logger: logger}
}

// GetAvailability projects open and taken hourly slots for every active court
// of the identified facility on the given date. The date is validated before
// storage is touched. A facility with zero active courts yields an empty map,
// logged as a configuration warning rather than failed.
func (s *AvailabilityService) GetAvailability(ctx context.Context, facilityIdentifier, date string) (*Availability, error) {
	if _, err := ParseDate(date, nil); err != nil {
		return nil, ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
	}

	facility, err := s.resolver.Resolve(ctx, facilityIdentifier)
	if err != nil {
		return nil, err
	}
	if !facility.Active {
		return nil, tenant.ErrFacilityNotFound
	}

	day, err := ParseDate(date, facility.Location())
	if err != nil {
		return nil, ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
	}

	grid := GenerateSlots(facility, day)
	if len(grid) == 0 {
		s.logger.Warn().
			Int64("facility_id", facility.ID).
			Str("facility_slug", facility.Slug).
			Msg("Facility has no active courts")
	} else {
		existing, err := s.store.ListQualifying(ctx, facility.ID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		grid = Annotate(grid, existing)
	}

	return &Availability{
		FacilityID:   facility.ID,
		FacilitySlug: facility.Slug,
		FacilityName: facility.Name,
		Date:         date,
		Courts:       grid,
	}, nil
}
