package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/ride"
)

type createRideRequest struct {
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	RideType      models.RideType     `json:"rideType"`
	VehicleType   models.VehicleClass `json:"vehicleType"`
	TotalSeats    int                 `json:"totalSeats"`
	DepartureTime *time.Time          `json:"departureTime,omitempty"`
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	detail, err := s.Rides.Create(r.Context(), ride.CreateRequest{
		UserID:        claims.UserID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		RideType:      req.RideType,
		VehicleClass:  req.VehicleType,
		TotalSeats:    req.TotalSeats,
		DepartureTime: req.DepartureTime,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "ride created", "ride": detail})
}

func (s *Server) handleSearchRides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var date time.Time
	if d := q.Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	rides, err := s.Rides.SearchScheduled(r.Context(), q.Get("origin"), q.Get("destination"), date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rides": rides})
}

func (s *Server) handleAcceptRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	ride, err := s.Rides.Accept(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "ride accepted", "ride": ride})
}

func (s *Server) handleStartRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	ride, err := s.Rides.Start(r.Context(), mux.Vars(r)["id"], claims.UserID, req.OTP)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "ride started", "ride": ride})
}

func (s *Server) handleCompleteRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	ride, err := s.Rides.Complete(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "ride completed", "ride": ride})
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	ride, err := s.Rides.Cancel(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "ride canceled", "ride": ride})
}

// handleCaptainLocation ingests a captain's position: geo index for matching,
// Kafka (when configured) for the consumer pipeline and anyone else listening.
func (s *Server) handleCaptainLocation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if !claims.Role.CanDrive() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only captains publish locations"})
		return
	}
	var loc models.Coord
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	captain := models.Captain{ID: claims.UserID, Loc: loc, Online: true}
	s.Geo.Upsert(captain)
	if s.Kafka != nil {
		if err := s.Kafka.PublishLocation(captain); err != nil {
			s.logger.Warn("location publish failed", "captain_id", captain.ID, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
