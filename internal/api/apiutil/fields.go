package apiutil

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	facilityQueryKey = "facility"
	dateQueryKey     = "date"
)

// FacilityFromQuery reads the facility identifier (slug or id) from the query.
func FacilityFromQuery(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(facilityQueryKey))
	if raw == "" {
		return "", fmt.Errorf("%s is required", facilityQueryKey)
	}
	return raw, nil
}

// FacilityFromQueryOrDefault reads the facility identifier, allowing empty
// for callers that rely on the configured default tenant.
func FacilityFromQueryOrDefault(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get(facilityQueryKey))
}

// DateFromQuery reads the YYYY-MM-DD date parameter. Format validation is the
// core's job; this only checks presence.
func DateFromQuery(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(dateQueryKey))
	if raw == "" {
		return "", fmt.Errorf("%s is required", dateQueryKey)
	}
	return raw, nil
}

func FormatPriceCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
