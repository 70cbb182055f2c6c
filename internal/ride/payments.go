package ride

import (
	"context"
	"sync"

	"github.com/example/ride-hailing/internal/models"
)

// holdMap tracks payment-hold ids per ride. Process-local: losing it on
// restart means an abandoned hold that expires on the provider's side.
type holdMap struct {
	mu sync.Mutex
	m  map[string]string
}

func (h *holdMap) put(rideID, holdID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.m == nil {
		h.m = make(map[string]string)
	}
	h.m[rideID] = holdID
}

func (h *holdMap) take(rideID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.m[rideID]
	if ok {
		delete(h.m, rideID)
	}
	return id, ok
}

// holdFare places a manual-capture hold for the selected class fare.
// All payment steps are best effort: the ride proceeds even if the
// provider call fails.
func (s *Service) holdFare(ctx context.Context, r *models.Ride) {
	if s.Payments == nil {
		return
	}
	amount := int64(r.Fare[r.VehicleClass]) * 100 // minor units
	holdID, err := s.Payments.Hold(ctx, amount, "inr", r.UserID)
	if err != nil {
		s.Log.Warn("fare hold failed", "ride_id", r.ID, "error", err)
		return
	}
	s.holds.put(r.ID, holdID)
}

func (s *Service) captureFare(ctx context.Context, r *models.Ride) {
	if s.Payments == nil {
		return
	}
	holdID, ok := s.holds.take(r.ID)
	if !ok {
		return
	}
	if err := s.Payments.Capture(ctx, holdID); err != nil {
		s.Log.Warn("fare capture failed", "ride_id", r.ID, "error", err)
	}
}

func (s *Service) releaseFare(ctx context.Context, r *models.Ride) {
	if s.Payments == nil {
		return
	}
	holdID, ok := s.holds.take(r.ID)
	if !ok {
		return
	}
	if err := s.Payments.Cancel(ctx, holdID); err != nil {
		s.Log.Warn("fare hold release failed", "ride_id", r.ID, "error", err)
	}
}
