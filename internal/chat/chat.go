package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-hailing/internal/dispatch"
	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/observability"
	"github.com/example/ride-hailing/internal/storage"
)

var ErrEmptyMessage = errors.New("message body is empty")

// Pusher sends one real-time event to one user.
type Pusher interface {
	Send(userID, event string, data any) error
}

// Service stores chat messages and pushes them live when the receiver is
// connected. Conversations are created lazily on first contact; messages
// are append-only.
type Service struct {
	Store storage.MessageStore
	Push  Pusher
	Log   *slog.Logger
}

func (s *Service) Send(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.Store.ConversationBetween(ctx, senderID, receiverID)
	if errors.Is(err, storage.ErrNotFound) {
		conv = &models.Conversation{
			ID:           uuid.NewString(),
			Participants: []string{senderID, receiverID},
			CreatedAt:    time.Now(),
		}
		if cerr := s.Store.CreateConversation(ctx, conv); cerr != nil {
			if !errors.Is(cerr, storage.ErrDuplicate) {
				return nil, cerr
			}
			// lost the create race; the message belongs to the winner
			conv, err = s.Store.ConversationBetween(ctx, senderID, receiverID)
			if err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if err := s.Store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesSent.Inc()

	// live delivery is best effort; the receiver reads history on next load
	if err := s.Push.Send(receiverID, dispatch.EventNewMessage, msg); err != nil {
		s.Log.Debug("newMessage push skipped", "receiver_id", receiverID, "error", err)
	}
	return msg, nil
}

func (s *Service) History(ctx context.Context, a, b string) ([]models.Message, error) {
	return s.Store.MessagesBetween(ctx, a, b)
}
