package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorBody struct {
	Error     string            `json:"error"`
	Conflicts []booking.Booking `json:"conflicts,omitempty"`
}

// WriteCoreError translates the core error taxonomy into HTTP statuses:
// validation 400, not-found 404, conflict and bad transitions 409,
// configuration 500. Anything unrecognized is logged and returned as a 500
// without leaking internals.
func WriteCoreError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var validationErr booking.ValidationError
	var conflictErr booking.ConflictError
	var transitionErr booking.TransitionError
	var configErr tenant.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, errorBody{Error: validationErr.Error()})
	case errors.Is(err, tenant.ErrFacilityNotFound):
		writeError(w, http.StatusNotFound, errorBody{Error: "facility not found"})
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, errorBody{Error: "booking not found"})
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, errorBody{Error: conflictErr.Error(), Conflicts: conflictErr.Conflicts})
	case errors.As(err, &transitionErr):
		writeError(w, http.StatusConflict, errorBody{Error: transitionErr.Error()})
	case errors.As(err, &configErr):
		logger.Error().Err(err).Msg("Tenant configuration error")
		writeError(w, http.StatusInternalServerError, errorBody{Error: "service misconfigured"})
	default:
		logger.Error().Err(err).Msg("Unhandled core error")
		writeError(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	_ = WriteJSON(w, status, body)
}
