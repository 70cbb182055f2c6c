package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/ride-hailing/internal/models"
)

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	receiverID := mux.Vars(r)["receiverId"]
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	msg, err := s.Chat.Send(r.Context(), claims.UserID, receiverID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	receiverID := mux.Vars(r)["receiverId"]
	msgs, err := s.Chat.History(r.Context(), claims.UserID, receiverID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	notifs, err := s.Store.NotificationsByUser(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.Store.MarkAllRead(r.Context(), claims.UserID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notifications marked as read"})
}
