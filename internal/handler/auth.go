package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/mathom/internal/auth"
	"github.com/dukerupert/mathom/internal/model"
	"github.com/dukerupert/mathom/internal/service"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"

	maxUsernameLen = 64
	minPasswordLen = 8
)

type AuthHandler struct {
	sessions     *service.SessionService
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
	logger       *slog.Logger
}

func NewAuthHandler(sessions *service.SessionService, cookieSecure bool, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		cookieSecure: cookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		logger:       logger,
	}
}

type sessionResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > maxUsernameLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}
	if len(req.Password) < minPasswordLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	var email *string
	if addr := strings.TrimSpace(req.Email); addr != "" {
		if _, err := mail.ParseAddress(addr); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
			return
		}
		email = &addr
	}

	if _, err := h.sessions.Signup(req.Username, email, req.Password); err != nil {
		h.writeServiceError(w, "signup", err)
		return
	}

	// No tokens and no cookies; the client signs in with its credentials.
	writeJSON(w, http.StatusCreated, map[string]string{"status": "account created"})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	user, pair, err := h.sessions.Signin(req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, "signin", err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Refresh accepts the refresh token from its cookie, or from the request
// body for clients that manage tokens themselves.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		raw = cookie.Value
	} else {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	_, pair, err := h.sessions.Refresh(raw)
	if err != nil {
		h.writeServiceError(w, "refresh", err)
		return
	}

	// The rotated refresh token travels only in its cookie.
	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": pair.AccessToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.sessions.Logout(userID); err != nil {
		h.writeServiceError(w, "logout", err)
		return
	}

	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// setSessionCookies applies one policy to both tokens; only the lifetime
// differs.
func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, h.sessionCookie(accessCookieName, pair.AccessToken, int(h.accessTTL.Seconds())))
	http.SetCookie(w, h.sessionCookie(refreshCookieName, pair.RefreshToken, int(h.refreshTTL.Seconds())))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.sessionCookie(accessCookieName, "", -1))
	http.SetCookie(w, h.sessionCookie(refreshCookieName, "", -1))
}

func (h *AuthHandler) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
	}
}

func (h *AuthHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	writeServiceError(w, h.logger, op, err)
}
