package httpapi

import (
	"net/http"

	"github.com/example/ride-hailing/internal/models"
)

func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
		return
	}
	coord, err := s.Geocoder.Resolve(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

func (s *Server) handleDistanceTime(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	if origin == "" || destination == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "origin and destination are required"})
		return
	}
	originCoord, err := s.Geocoder.Resolve(r.Context(), origin)
	if err != nil {
		s.writeError(w, err)
		return
	}
	destCoord, err := s.Geocoder.Resolve(r.Context(), destination)
	if err != nil {
		s.writeError(w, err)
		return
	}
	route, err := s.Geocoder.RouteMatrix(r.Context(), originCoord, destCoord)
	if err != nil {
		s.writeError(w, err)
		return
	}
	type place struct {
		Name        string       `json:"name"`
		Coordinates models.Coord `json:"coordinates"`
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"origin":      place{Name: origin, Coordinates: originCoord},
		"destination": place{Name: destination, Coordinates: destCoord},
		"distance":    route.DistanceMeters,
		"duration":    route.DurationSeconds,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input is required"})
		return
	}
	labels, err := s.Geocoder.Suggest(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if labels == nil {
		labels = []string{}
	}
	writeJSON(w, http.StatusOK, labels)
}
