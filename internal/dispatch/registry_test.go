package dispatch

import (
	"testing"

	"github.com/gorilla/websocket"
)

func TestJoinReplacesSessionOnReconnect(t *testing.T) {
	r := NewRegistry()
	connA := &websocket.Conn{}
	connB := &websocket.Conn{}

	r.Join("u1", connA)
	r.Join("u1", connB)

	s, ok := r.Lookup("u1")
	if !ok {
		t.Fatal("expected a session after join")
	}
	if s.conn != connB {
		t.Fatal("reconnect should replace the old connection")
	}
	if r.Count() != 1 {
		t.Fatalf("expected one session, got %d", r.Count())
	}
}

func TestDropRemovesOnlyMatchingSession(t *testing.T) {
	r := NewRegistry()
	connA := &websocket.Conn{}
	connB := &websocket.Conn{}
	r.Join("u1", connA)
	r.Join("u2", connB)

	r.Drop(connB)

	if _, ok := r.Lookup("u2"); ok {
		t.Fatal("dropped user should have no session")
	}
	if s, ok := r.Lookup("u1"); !ok || s.conn != connA {
		t.Fatal("other user's session must be undisturbed")
	}
}

func TestDropStaleConnLeavesReplacement(t *testing.T) {
	// u1 reconnects, then the old connection's close handler fires
	r := NewRegistry()
	stale := &websocket.Conn{}
	fresh := &websocket.Conn{}
	r.Join("u1", stale)
	r.Join("u1", fresh)

	r.Drop(stale)

	if s, ok := r.Lookup("u1"); !ok || s.conn != fresh {
		t.Fatal("dropping the stale conn must not evict the replacement")
	}
}

func TestSendWithoutSession(t *testing.T) {
	r := NewRegistry()
	if err := r.Send("ghost", EventRideRequest, nil); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
