package ride

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/storage"
)

func createScheduledRide(t *testing.T, s *Service, seats int) *models.RideDetail {
	t.Helper()
	dep := time.Now().Add(24 * time.Hour)
	detail, err := s.Create(context.Background(), CreateRequest{
		UserID: "rider-1", Origin: "Downtown", Destination: "Airport",
		RideType: models.RideScheduled, TotalSeats: seats, DepartureTime: &dep,
	})
	if err != nil {
		t.Fatalf("create scheduled ride: %v", err)
	}
	return detail
}

func TestBookScheduledRide(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)

	b, err := s.Book(context.Background(), detail.ID, "pax-1", 2)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Status != models.BookingPending {
		t.Errorf("new booking must be pending, got %s", b.Status)
	}
	if len(b.StartOTP) != 6 || len(b.EndOTP) != 6 {
		t.Errorf("booking codes must be six digits, got %q/%q", b.StartOTP, b.EndOTP)
	}

	r, err := store.RideByID(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("reload ride: %v", err)
	}
	if r.SeatsBooked != 2 {
		t.Errorf("ride must account booked seats, got %d", r.SeatsBooked)
	}
}

func TestBookRejectsOverbooking(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	seedUser(t, store, "pax-2", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)

	if _, err := s.Book(context.Background(), detail.ID, "pax-1", 2); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := s.Book(context.Background(), detail.ID, "pax-2", 2); !errors.Is(err, ErrSeatsExceeded) {
		t.Fatalf("expected ErrSeatsExceeded, got %v", err)
	}
	// the remaining seat is still bookable
	if _, err := s.Book(context.Background(), detail.ID, "pax-2", 1); err != nil {
		t.Fatalf("booking remaining seat: %v", err)
	}
}

func TestBookRejectsInstantAndOwnRide(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)

	instant, err := s.Create(context.Background(), CreateRequest{
		UserID: "rider-1", Origin: "Downtown", Destination: "Airport",
	})
	if err != nil {
		t.Fatalf("create instant ride: %v", err)
	}
	if _, err := s.Book(context.Background(), instant.ID, "pax-1", 1); !errors.Is(err, ErrNotBookable) {
		t.Fatalf("expected ErrNotBookable for instant ride, got %v", err)
	}

	scheduled := createScheduledRide(t, s, 3)
	if _, err := s.Book(context.Background(), scheduled.ID, "rider-1", 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation booking own ride, got %v", err)
	}
}

func TestConfirmBooking(t *testing.T) {
	s, store, push, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)
	b, err := s.Book(context.Background(), detail.ID, "pax-1", 1)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := s.ConfirmBooking(context.Background(), b.ID, "pax-1"); !errors.Is(err, ErrNotDriver) {
		t.Fatalf("only the ride owner may confirm, got %v", err)
	}

	confirmed, err := s.ConfirmBooking(context.Background(), b.ID, "rider-1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}

	if _, err := s.ConfirmBooking(context.Background(), b.ID, "rider-1"); !errors.Is(err, ErrBookingClosed) {
		t.Fatalf("double confirm must fail, got %v", err)
	}

	found := false
	for _, sent := range push.snapshot() {
		if sent == "pax-1:notification" {
			found = true
		}
	}
	if !found {
		t.Errorf("passenger must be told on confirm, pushes: %v", push.snapshot())
	}
}

func TestCancelBookingFreesSeats(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)
	b, err := s.Book(context.Background(), detail.ID, "pax-1", 2)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := s.CancelBooking(context.Background(), b.ID, "stranger"); !errors.Is(err, ErrNotDriver) {
		t.Fatalf("strangers cannot cancel, got %v", err)
	}

	canceled, err := s.CancelBooking(context.Background(), b.ID, "pax-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != models.BookingCanceled {
		t.Errorf("expected canceled, got %s", canceled.Status)
	}
	r, _ := store.RideByID(context.Background(), detail.ID)
	if r.SeatsBooked != 0 {
		t.Errorf("seats must be released, got %d", r.SeatsBooked)
	}

	if _, err := s.CancelBooking(context.Background(), b.ID, "pax-1"); !errors.Is(err, ErrBookingClosed) {
		t.Fatalf("double cancel must fail, got %v", err)
	}
}

// flakyRides fails ride updates on demand to exercise booking cleanup.
type flakyRides struct {
	*storage.MemoryStore
	failUpdate bool
}

func (f *flakyRides) UpdateRide(ctx context.Context, r *models.Ride) error {
	if f.failUpdate {
		return errors.New("storage unavailable")
	}
	return f.MemoryStore.UpdateRide(ctx, r)
}

func TestBookBacksOutOnRideUpdateFailure(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)

	rides := &flakyRides{MemoryStore: store, failUpdate: true}
	s.Rides = rides

	if _, err := s.Book(context.Background(), detail.ID, "pax-1", 2); err == nil {
		t.Fatal("book must surface the ride update failure")
	}
	bookings, err := store.BookingsByRide(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("failed booking must not survive, got %d", len(bookings))
	}
	r, _ := store.RideByID(context.Background(), detail.ID)
	if r.SeatsBooked != 0 {
		t.Fatalf("seat count must be untouched, got %d", r.SeatsBooked)
	}

	// once storage recovers the same passenger can book
	rides.failUpdate = false
	if _, err := s.Book(context.Background(), detail.ID, "pax-1", 2); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}

func TestRideBookingsOwnerOnly(t *testing.T) {
	s, store, _, _ := newTestService(t)
	seedUser(t, store, "pax-1", models.RolePassenger)
	detail := createScheduledRide(t, s, 3)
	if _, err := s.Book(context.Background(), detail.ID, "pax-1", 1); err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := s.RideBookings(context.Background(), detail.ID, "pax-1"); !errors.Is(err, ErrNotDriver) {
		t.Fatalf("only the owner lists bookings, got %v", err)
	}
	bookings, err := s.RideBookings(context.Background(), detail.ID, "rider-1")
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected one booking, got %d", len(bookings))
	}
}
