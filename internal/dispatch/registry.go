package dispatch

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Event names pushed over the real-time channel.
const (
	EventRideRequest  = "rideRequest"
	EventRideAccepted = "rideAccepted"
	EventNewMessage   = "newMessage"
	EventNotification = "notification"
)

// Envelope is the wire shape of every server->client push.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

var ErrNoSession = errors.New("no live session for user")

// Session is one connected client. Writes are serialized per connection;
// gorilla/websocket does not allow concurrent writers.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Session) Send(event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Envelope{Event: event, Data: data})
}

// Registry maps logical user ids to live sessions. It is constructed once at
// process start and injected wherever pushes happen; state lives only as long
// as the process, so a restart logs out all real-time presence while bearer
// tokens stay valid.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry { return &Registry{sessions: make(map[string]*Session)} }

// Join binds userID to conn, replacing any previous session for that user.
func (r *Registry) Join(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = &Session{conn: conn}
}

// Drop removes whichever mapping holds conn. Linear scan over live sessions;
// fine at this scale and keeps the map keyed only by user id.
func (r *Registry) Drop(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.conn == conn {
			delete(r.sessions, id)
			return
		}
	}
}

func (r *Registry) Lookup(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Send pushes one event to one user, ErrNoSession if they are not connected.
func (r *Registry) Send(userID, event string, data any) error {
	s, ok := r.Lookup(userID)
	if !ok {
		return ErrNoSession
	}
	return s.Send(event, data)
}

// Count reports the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
