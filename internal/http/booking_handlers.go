package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/ride-hailing/internal/models"
)

func (s *Server) handleBookRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req struct {
		Seats int `json:"seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	b, err := s.Rides.Book(r.Context(), mux.Vars(r)["id"], claims.UserID, req.Seats)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// the passenger keeps the boarding code; it never appears in listings
	writeJSON(w, http.StatusCreated, map[string]any{"message": "booking requested", "booking": b, "otp": b.StartOTP})
}

func (s *Server) handleRideBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	bookings, err := s.Rides.RideBookings(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	b, err := s.Rides.ConfirmBooking(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "booking confirmed", "booking": b})
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	b, err := s.Rides.CancelBooking(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "booking canceled", "booking": b})
}
