package storage

import (
	"context"
	"errors"
	"time"

	"github.com/example/ride-hailing/internal/models"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate record")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type RideStore interface {
	CreateRide(ctx context.Context, r *models.Ride) error
	RideByID(ctx context.Context, id string) (*models.Ride, error)
	UpdateRide(ctx context.Context, r *models.Ride) error
	// SearchScheduled lists rides still searching for captains whose
	// departure falls on the given calendar day, filtered by place names.
	SearchScheduled(ctx context.Context, origin, destination string, date time.Time) ([]models.Ride, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	BookingsByRide(ctx context.Context, rideID string) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
}

type MessageStore interface {
	// ConversationBetween finds the conversation for a pair of users in
	// either order, ErrNotFound when they have never talked.
	ConversationBetween(ctx context.Context, a, b string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, c *models.Conversation) error
	AppendMessage(ctx context.Context, m *models.Message) error
	MessagesBetween(ctx context.Context, a, b string) ([]models.Message, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	NotificationsByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// Store bundles every persistence concern the application touches.
type Store interface {
	UserStore
	RideStore
	BookingStore
	MessageStore
	NotificationStore
}
