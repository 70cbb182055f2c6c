package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-hailing/internal/dispatch"
	"github.com/example/ride-hailing/internal/fare"
	"github.com/example/ride-hailing/internal/geocode"
	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/observability"
	"github.com/example/ride-hailing/internal/storage"
)

var (
	ErrValidation      = errors.New("origin and destination are required")
	ErrInvalidLocation = errors.New("could not resolve pickup or destination")
	ErrNotDriver       = errors.New("account cannot accept rides")
	ErrNotParticipant  = errors.New("ride does not belong to this account")
	ErrWrongOTP        = errors.New("ride start code does not match")
	ErrSeatsExceeded   = errors.New("seats booked would exceed total seats")
)

// Geocoder is the slice of the geocoding client the service needs.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (models.Coord, error)
	RouteMatrix(ctx context.Context, from, to models.Coord) (geocode.Route, error)
}

// CaptainIndex finds candidate captains around a point.
type CaptainIndex interface {
	Nearby(lat, lng, radiusMeters float64, limit int) []models.Captain
}

// Pusher sends one real-time event to one user.
type Pusher interface {
	Send(userID, event string, data any) error
}

// Fanout delivers one event to many users best effort, reporting how many
// were actually reached.
type Fanout interface {
	Broadcast(userIDs []string, event string, data any) int
}

// PaymentHolder places and settles fare holds. Optional; nil disables payments.
type PaymentHolder interface {
	Hold(ctx context.Context, amount int64, currency, customerID string) (string, error)
	Capture(ctx context.Context, holdID string) error
	Cancel(ctx context.Context, holdID string) error
}

type CreateRequest struct {
	UserID        string
	Origin        string
	Destination   string
	RideType      models.RideType
	VehicleClass  models.VehicleClass
	TotalSeats    int
	DepartureTime *time.Time
}

// Service owns the ride lifecycle: creation with geocoding and fare pricing,
// captain fan-out, and the guarded status transitions afterwards.
type Service struct {
	Geocoder     Geocoder
	Captains     CaptainIndex
	Push         Pusher
	Fanout       Fanout
	Users        storage.UserStore
	Rides        storage.RideStore
	Bookings     storage.BookingStore
	Notifs       storage.NotificationStore
	Payments     PaymentHolder
	Log          *slog.Logger
	SearchRadius float64 // meters
	NearbyLimit  int

	// payment hold ids per ride, process-local best effort
	holds holdMap
}

const (
	defaultSearchRadius = 5000
	defaultNearbyLimit  = 20
)

// Create runs the full ride-request flow. Steps 1-6 are synchronous; the
// captain fan-out happens in a goroutine and its failure never surfaces to
// the caller.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.RideDetail, error) {
	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return nil, ErrValidation
	}

	originCoord, err := s.Geocoder.Resolve(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	destCoord, err := s.Geocoder.Resolve(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	route, err := s.Geocoder.RouteMatrix(ctx, originCoord, destCoord)
	if err != nil {
		return nil, err
	}
	fares := fare.Estimate(route.DistanceMeters, route.DurationSeconds)

	otp, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	class := req.VehicleClass
	if class == "" {
		class = models.ClassCar
	}
	totalSeats := req.TotalSeats
	if totalSeats <= 0 {
		totalSeats = 1
	}
	rideType := req.RideType
	if rideType == "" {
		rideType = models.RideInstant
	}

	now := time.Now()
	r := &models.Ride{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Origin:          origin,
		Destination:     destination,
		OriginCoord:     originCoord,
		DestCoord:       destCoord,
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Fare:            fares,
		VehicleClass:    class,
		TotalSeats:      totalSeats,
		RideType:        rideType,
		Status:          models.StatusSearching,
		OTP:             otp,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// instant rides dispatch now; any caller-supplied departure is dropped
	if rideType != models.RideInstant {
		r.DepartureTime = req.DepartureTime
	}

	if err := s.Rides.CreateRide(ctx, r); err != nil {
		return nil, err
	}
	observability.RidesCreated.Inc()

	requester, err := s.Users.UserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	detail := &models.RideDetail{
		Ride:         *r,
		Requester:    requester.Summary(),
		StartCode:    otp,
		SelectedFare: fares[class],
	}

	go s.notifyNearbyCaptains(detail)

	s.Log.Info("ride created",
		"ride_id", r.ID, "user_id", r.UserID, "type", string(rideType),
		"distance_m", r.DistanceMeters, "duration_s", r.DurationSeconds)
	return detail, nil
}

// rideOffer is the rideRequest payload pushed to candidate captains: the ride
// plus who is asking. The start code stays between the requester and whoever
// is eventually assigned, so it is deliberately absent here.
type rideOffer struct {
	models.Ride
	Requester models.UserSummary `json:"user"`
}

// notifyNearbyCaptains pushes rideRequest to every connected captain within
// the search radius. Fire and forget.
func (s *Service) notifyNearbyCaptains(detail *models.RideDetail) {
	radius := s.SearchRadius
	if radius <= 0 {
		radius = defaultSearchRadius
	}
	limit := s.NearbyLimit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	candidates := s.Captains.Nearby(detail.OriginCoord.Lat, detail.OriginCoord.Lng, radius, limit)
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == detail.UserID {
			continue // requester may also be a captain
		}
		ids = append(ids, c.ID)
	}
	offer := rideOffer{Ride: detail.Ride, Requester: detail.Requester}
	notified := s.Fanout.Broadcast(ids, dispatch.EventRideRequest, offer)
	observability.CaptainsNotified.Add(float64(notified))
	s.Log.Info("ride fan-out", "ride_id", detail.ID, "candidates", len(candidates), "notified", notified)
}

// SearchScheduled is a thin query over rides still waiting for a captain.
func (s *Service) SearchScheduled(ctx context.Context, origin, destination string, date time.Time) ([]models.Ride, error) {
	return s.Rides.SearchScheduled(ctx, origin, destination, date)
}

// Accept assigns a captain to a searching ride and tells the requester.
func (s *Service) Accept(ctx context.Context, rideID, captainID string) (*models.Ride, error) {
	captain, err := s.Users.UserByID(ctx, captainID)
	if err != nil {
		return nil, err
	}
	if !captain.Role.CanDrive() {
		return nil, ErrNotDriver
	}
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.UserID == captainID {
		return nil, ErrNotDriver // cannot drive your own ride
	}
	next, err := r.Status.Transition(models.StatusDriverAssigned)
	if err != nil {
		return nil, err
	}
	r.Status = next
	r.CaptainID = captainID
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		return nil, err
	}

	s.holdFare(ctx, r)
	s.notify(ctx, r.UserID, r.ID, "ride_accepted",
		fmt.Sprintf("%s accepted your ride to %s", captain.Name, r.Destination))
	payload := map[string]any{"ride": r, "captain": captain.Summary()}
	if err := s.Push.Send(r.UserID, dispatch.EventRideAccepted, payload); err != nil {
		s.Log.Debug("rideAccepted push skipped", "ride_id", r.ID, "error", err)
	}
	return r, nil
}

// Start moves an assigned ride to ongoing once the captain presents the
// passenger's one-time code.
func (s *Service) Start(ctx context.Context, rideID, captainID, otp string) (*models.Ride, error) {
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.CaptainID != captainID {
		return nil, ErrNotDriver
	}
	if r.OTP != otp {
		return nil, ErrWrongOTP
	}
	next, err := r.Status.Transition(models.StatusOngoing)
	if err != nil {
		return nil, err
	}
	r.Status = next
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		return nil, err
	}
	s.notify(ctx, r.UserID, r.ID, "ride_started", "Your ride has started")
	return r, nil
}

// Complete finishes an ongoing ride and captures any fare hold.
func (s *Service) Complete(ctx context.Context, rideID, captainID string) (*models.Ride, error) {
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.CaptainID != captainID {
		return nil, ErrNotDriver
	}
	next, err := r.Status.Transition(models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	r.Status = next
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		return nil, err
	}
	s.captureFare(ctx, r)
	s.notify(ctx, r.UserID, r.ID, "ride_completed", "Your ride is complete")
	observability.RidesCompleted.Inc()
	return r, nil
}

// Cancel moves any non-terminal ride to canceled and releases any fare hold.
// Only the requester or the assigned captain may cancel.
func (s *Service) Cancel(ctx context.Context, rideID, requesterID string) (*models.Ride, error) {
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if requesterID != r.UserID && requesterID != r.CaptainID {
		return nil, ErrNotParticipant
	}
	next, err := r.Status.Transition(models.StatusCanceled)
	if err != nil {
		return nil, err
	}
	r.Status = next
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		return nil, err
	}
	s.releaseFare(ctx, r)
	if r.CaptainID != "" {
		other := r.CaptainID
		if requesterID == r.CaptainID {
			other = r.UserID
		}
		s.notify(ctx, other, r.ID, "ride_canceled", "The ride was canceled")
	}
	return r, nil
}

func (s *Service) notify(ctx context.Context, userID, rideID, kind, message string) {
	if s.Notifs == nil {
		return
	}
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		RideID:    rideID,
		Type:      kind,
		CreatedAt: time.Now(),
	}
	if err := s.Notifs.CreateNotification(ctx, n); err != nil {
		s.Log.Warn("notification write failed", "user_id", userID, "error", err)
		return
	}
	_ = s.Push.Send(userID, dispatch.EventNotification, n)
}
