package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"cashplan/internal/model"
)

type registerRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	TelegramChatID *int64 `json:"telegramChatId,omitempty"`
}

type registerResponse struct {
	User     model.User `json:"user"`
	APIToken string     `json:"apiToken"`
}

// handleRegister creates a user and returns the API token once.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	user := &model.User{
		Email:          strings.TrimSpace(req.Email),
		Name:           strings.TrimSpace(req.Name),
		APIToken:       uuid.NewString(),
		TelegramChatID: req.TelegramChatID,
	}
	if err := s.userRepo.Create(r.Context(), user); err != nil {
		s.log.Error().Err(err).Msg("register user")
		WriteError(w, http.StatusConflict, "could not create user")
		return
	}

	WriteJSON(w, http.StatusCreated, registerResponse{User: *user, APIToken: user.APIToken})
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, userFrom(r))
}
