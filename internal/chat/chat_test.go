package chat

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/ride-hailing/internal/dispatch"
	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/storage"
)

type recordingPush struct {
	sends []string // "userID:event"
	fail  bool
}

func (p *recordingPush) Send(userID, event string, data any) error {
	p.sends = append(p.sends, userID+":"+event)
	if p.fail {
		return dispatch.ErrNoSession
	}
	return nil
}

func newService(push *recordingPush) *Service {
	return &Service{Store: storage.NewMemoryStore(), Push: push, Log: slog.Default()}
}

func TestSendCreatesConversationLazily(t *testing.T) {
	push := &recordingPush{}
	s := newService(push)

	m1, err := s.Send(context.Background(), "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	m2, err := s.Send(context.Background(), "bob", "alice", "hey")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if m1.ConversationID != m2.ConversationID {
		t.Fatal("both directions must share one conversation")
	}
}

func TestSendPushesToReceiver(t *testing.T) {
	push := &recordingPush{}
	s := newService(push)

	if _, err := s.Send(context.Background(), "alice", "bob", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(push.sends) != 1 || push.sends[0] != "bob:"+dispatch.EventNewMessage {
		t.Fatalf("expected one newMessage push to bob, got %v", push.sends)
	}
}

func TestSendSucceedsWhenReceiverOffline(t *testing.T) {
	push := &recordingPush{fail: true}
	s := newService(push)

	if _, err := s.Send(context.Background(), "alice", "bob", "hi"); err != nil {
		t.Fatalf("offline receiver must not fail the send: %v", err)
	}
	msgs, err := s.History(context.Background(), "alice", "bob")
	if err != nil || len(msgs) != 1 {
		t.Fatalf("message must still be stored: %v %v", msgs, err)
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	s := newService(&recordingPush{})
	if _, err := s.Send(context.Background(), "alice", "bob", "   "); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

// racingStore simulates losing the conversation create race: the first lookup
// misses, the create collides, and the retry sees the winner.
type racingStore struct {
	*storage.MemoryStore
	lookups int
}

func (r *racingStore) ConversationBetween(ctx context.Context, a, b string) (*models.Conversation, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, storage.ErrNotFound
	}
	return r.MemoryStore.ConversationBetween(ctx, a, b)
}

func (r *racingStore) CreateConversation(ctx context.Context, c *models.Conversation) error {
	return storage.ErrDuplicate
}

func TestSendAdoptsWinnerOnCreateCollision(t *testing.T) {
	mem := storage.NewMemoryStore()
	winner := &models.Conversation{
		ID:           "winner-conv",
		Participants: []string{"alice", "bob"},
		CreatedAt:    time.Now(),
	}
	if err := mem.CreateConversation(context.Background(), winner); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	s := &Service{Store: &racingStore{MemoryStore: mem}, Push: &recordingPush{}, Log: slog.Default()}

	msg, err := s.Send(context.Background(), "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ConversationID != "winner-conv" {
		t.Fatalf("message must land in the surviving conversation, got %s", msg.ConversationID)
	}
}

func TestHistoryOrdered(t *testing.T) {
	s := newService(&recordingPush{})
	bodies := []string{"one", "two", "three"}
	for _, b := range bodies {
		if _, err := s.Send(context.Background(), "alice", "bob", b); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	msgs, err := s.History(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for i, b := range bodies {
		if msgs[i].Body != b {
			t.Fatalf("messages out of append order: %v", msgs)
		}
	}
}
