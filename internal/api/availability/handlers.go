// internal/api/availability/handlers.go
package availability

import (
	"context"
	"sync"
	"time"

	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/api/apiutil"
	"github.com/courtsidehq/courtbook/internal/booking"
)

const availabilityQueryTimeout = 5 * time.Second

var (
	service     *booking.AvailabilityService
	serviceOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.AvailabilityService) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

// GET /api/v1/availability?facility={slug|id}&date=YYYY-MM-DD
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Availability service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.DateFromQuery(r)
	if err != nil {
		apiutil.WriteCoreError(w, r, booking.ValidationError{Field: "date", Reason: "is required"})
		return
	}
	facility := apiutil.FacilityFromQueryOrDefault(r)

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	projection, err := svc.GetAvailability(ctx, facility, date)
	if err != nil {
		apiutil.WriteCoreError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, projection); err != nil {
		logger.Error().Err(err).Msg("Failed to write availability response")
	}
}

func loadService() *booking.AvailabilityService {
	return service
}
