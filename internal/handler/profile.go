package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dukerupert/mathom/internal/auth"
	"github.com/dukerupert/mathom/internal/model"
	"github.com/dukerupert/mathom/internal/service"
)

type ProfileHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

func NewProfileHandler(sessions *service.SessionService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, logger: logger}
}

type profileResponse struct {
	User        *model.User        `json:"user"`
	Preferences *model.Preferences `json:"preferences"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, prefs, err := h.sessions.GetProfile(userID)
	if err != nil {
		writeServiceError(w, h.logger, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Preferences: prefs})
}

// Update merges username and email; omitted fields keep their stored value,
// and any other field in the body is ignored, never applied.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Username == nil && req.Email == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no fields to update"})
		return
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" || len(name) > maxUsernameLen {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username must not be empty"})
			return
		}
		req.Username = &name
	}
	if req.Email != nil {
		addr := strings.TrimSpace(*req.Email)
		// An explicit empty email clears the stored address.
		if addr != "" {
			if _, err := mail.ParseAddress(addr); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
				return
			}
		}
		req.Email = &addr
	}

	user, err := h.sessions.UpdateProfile(userID, req.Username, req.Email)
	if err != nil {
		writeServiceError(w, h.logger, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Frontend map[string]any `json:"frontend"`
		Backend  map[string]any `json:"backend"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Frontend) == 0 && len(req.Backend) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no preference keys given"})
		return
	}

	prefs, err := h.sessions.UpdatePreferences(userID, req.Frontend, req.Backend)
	if err != nil {
		writeServiceError(w, h.logger, "update preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
