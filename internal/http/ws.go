package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/observability"
)

var upgrader = websocket.Upgrader{
	// tokens authenticate users, not origins; the SPA may be served anywhere
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// handleWS upgrades the connection and runs the read loop. A client is
// anonymous until it sends a join handshake; after that it can receive
// targeted pushes and, for captains, stream location updates.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already wrote the error
	}
	observability.WSConnections.Inc()
	defer func() {
		s.Reg.Drop(conn)
		observability.WSConnections.Dec()
		_ = conn.Close()
	}()

	joined := ""
	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Event {
		case "join":
			var payload struct {
				UserID string `json:"userId"`
			}
			if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.UserID == "" {
				continue
			}
			s.Reg.Join(payload.UserID, conn)
			joined = payload.UserID
			s.logger.Debug("ws join", "user_id", joined)
		case "location":
			if joined == "" {
				continue
			}
			var loc models.Coord
			if err := json.Unmarshal(msg.Data, &loc); err != nil {
				continue
			}
			captain := models.Captain{ID: joined, Loc: loc, Online: true}
			s.Geo.Upsert(captain)
			if s.Kafka != nil {
				_ = s.Kafka.PublishLocation(captain)
			}
		}
	}
}
