package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-hailing/internal/auth"
	"github.com/example/ride-hailing/internal/models"
	"github.com/example/ride-hailing/internal/storage"
)

type registerRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Password string          `json:"password"`
	Role     models.Role     `json:"role"`
	Vehicle  *models.Vehicle `json:"vehicle,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and a password of at least 6 characters are required"})
		return
	}
	switch req.Role {
	case models.RolePassenger, models.RoleCaptain, models.RoleBoth:
	case "":
		req.Role = models.RolePassenger
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
		return
	}
	if req.Role.CanDrive() && req.Vehicle == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "captain accounts need a vehicle"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		Vehicle:      req.Vehicle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.CreateUser(r.Context(), u); err != nil {
		if err == storage.ErrDuplicate {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		s.writeError(w, err)
		return
	}
	token, err := s.Auth.Issue(u.ID, u.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "registered", "user": u, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	u, err := s.Store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		// same answer for unknown email and wrong password
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	token, err := s.Auth.Issue(u.ID, u.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged in", "user": u, "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	u, err := s.Store.UserByID(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

type profileUpdateRequest struct {
	Name    *string         `json:"name,omitempty"`
	Phone   *string         `json:"phone,omitempty"`
	Vehicle *models.Vehicle `json:"vehicle,omitempty"`
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	u, err := s.Store.UserByID(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Vehicle != nil {
		u.Vehicle = req.Vehicle
	}
	if err := s.Store.UpdateUser(r.Context(), u); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "profile updated", "user": u})
}

func (s *Server) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
