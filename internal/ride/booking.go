package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-hailing/internal/models"
)

var (
	ErrNotBookable   = errors.New("ride does not take seat bookings")
	ErrBookingClosed = errors.New("booking is no longer open")
)

// Book reserves seats on a scheduled or recurring ride. Instant rides are
// matched to a captain, not booked seat by seat.
func (s *Service) Book(ctx context.Context, rideID, passengerID string, seats int) (*models.Booking, error) {
	if seats <= 0 {
		seats = 1
	}
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.RideType == models.RideInstant || r.Status.Terminal() {
		return nil, ErrNotBookable
	}
	if r.UserID == passengerID {
		return nil, fmt.Errorf("%w: cannot book your own ride", ErrValidation)
	}
	if r.SeatsBooked+seats > r.TotalSeats {
		return nil, ErrSeatsExceeded
	}

	startOTP, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	endOTP, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	b := &models.Booking{
		ID:          uuid.NewString(),
		RideID:      r.ID,
		PassengerID: passengerID,
		Seats:       seats,
		Status:      models.BookingPending,
		StartOTP:    startOTP,
		EndOTP:      endOTP,
		CreatedAt:   time.Now(),
	}
	if err := s.Bookings.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	r.SeatsBooked += seats
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		// back out the booking so it cannot hold unaccounted seats
		if derr := s.Bookings.DeleteBooking(ctx, b.ID); derr != nil {
			s.Log.Warn("orphaned booking cleanup failed", "booking_id", b.ID, "error", derr)
		}
		return nil, err
	}

	s.notify(ctx, r.UserID, r.ID, "booking_requested",
		fmt.Sprintf("New booking request for %d seat(s) to %s", seats, r.Destination))
	s.Log.Info("booking created", "booking_id", b.ID, "ride_id", r.ID, "seats", seats)
	return b, nil
}

// ConfirmBooking lets the ride owner approve a pending booking. The passenger
// is told and receives their boarding code.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID, ownerID string) (*models.Booking, error) {
	b, err := s.Bookings.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	r, err := s.Rides.RideByID(ctx, b.RideID)
	if err != nil {
		return nil, err
	}
	if r.UserID != ownerID {
		return nil, ErrNotDriver
	}
	if b.Status != models.BookingPending {
		return nil, ErrBookingClosed
	}
	b.Status = models.BookingConfirmed
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	s.notify(ctx, b.PassengerID, r.ID, "booking_confirmed",
		fmt.Sprintf("Your booking to %s is confirmed. Boarding code: %s", r.Destination, b.StartOTP))
	return b, nil
}

// CancelBooking releases the booked seats. Either party may cancel while the
// ride has not finished.
func (s *Service) CancelBooking(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := s.Bookings.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	r, err := s.Rides.RideByID(ctx, b.RideID)
	if err != nil {
		return nil, err
	}
	if b.PassengerID != requesterID && r.UserID != requesterID {
		return nil, ErrNotDriver
	}
	if b.Status == models.BookingCanceled || r.Status.Terminal() {
		return nil, ErrBookingClosed
	}
	b.Status = models.BookingCanceled
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	r.SeatsBooked -= b.Seats
	if r.SeatsBooked < 0 {
		r.SeatsBooked = 0
	}
	if err := s.Rides.UpdateRide(ctx, r); err != nil {
		return nil, err
	}

	other := r.UserID
	if requesterID == r.UserID {
		other = b.PassengerID
	}
	s.notify(ctx, other, r.ID, "booking_canceled", "A booking on your ride was canceled")
	return b, nil
}

// RideBookings lists bookings on a ride, owner only.
func (s *Service) RideBookings(ctx context.Context, rideID, ownerID string) ([]models.Booking, error) {
	r, err := s.Rides.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.UserID != ownerID {
		return nil, ErrNotDriver
	}
	return s.Bookings.BookingsByRide(ctx, rideID)
}
