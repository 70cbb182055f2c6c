package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ride-hailing/internal/auth"
	"github.com/example/ride-hailing/internal/chat"
	"github.com/example/ride-hailing/internal/geocode"
	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/observability"
	"github.com/example/ride-hailing/internal/ride"
	"github.com/example/ride-hailing/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto the HTTP taxonomy: caller mistakes are
// 400/403, missing things 404, illegal state moves 409, everything upstream
// or unexpected a generic 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var badTransition *models.BadTransitionError
	var upstream *geocode.UpstreamError

	switch {
	case errors.Is(err, ride.ErrValidation),
		errors.Is(err, ride.ErrInvalidLocation),
		errors.Is(err, ride.ErrSeatsExceeded),
		errors.Is(err, ride.ErrNotBookable),
		errors.Is(err, chat.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, ride.ErrNotDriver), errors.Is(err, ride.ErrNotParticipant), errors.Is(err, ride.ErrWrongOTP):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, geocode.ErrNoMatch):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, ride.ErrBookingClosed):
		status = http.StatusConflict
	case errors.As(err, &badTransition):
		status = http.StatusConflict
	case errors.As(err, &upstream):
		observability.GeocodeErrors.Inc()
		message = "upstream provider unavailable"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if upstream == nil {
			message = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": message})
}
