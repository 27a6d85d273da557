package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/mathom/internal/auth"
	"github.com/dukerupert/mathom/internal/model"
	"github.com/dukerupert/mathom/internal/store"
	"github.com/dukerupert/mathom/internal/websocket"
)

var accountKinds = map[string]bool{
	"checking": true,
	"savings":  true,
	"credit":   true,
	"cash":     true,
}

type AccountHandler struct {
	store  *store.AccountStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAccountHandler(s *store.AccountStore, hub *websocket.Hub, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{store: s, hub: hub, logger: logger}
}

func (h *AccountHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list accounts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list accounts"})
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Name                string `json:"name"`
		Kind                string `json:"kind"`
		OpeningBalanceCents int64  `json:"opening_balance_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Kind == "" {
		req.Kind = "checking"
	}
	if !accountKinds[req.Kind] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be one of checking, savings, credit, cash"})
		return
	}

	account, err := h.store.Create(userID, req.Name, req.Kind, req.OpeningBalanceCents)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "an account with that name already exists"})
			return
		}
		h.logger.Error("create account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityAccount, websocket.ActionCreated, account.ID, nil))
	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	account, err := h.store.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get account"})
		return
	}
	if account == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get account"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}

	var req struct {
		Name                string `json:"name"`
		Kind                string `json:"kind"`
		OpeningBalanceCents *int64 `json:"opening_balance_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.Kind == "" {
		req.Kind = existing.Kind
	}
	if !accountKinds[req.Kind] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be one of checking, savings, credit, cash"})
		return
	}
	balance := existing.OpeningBalanceCents
	if req.OpeningBalanceCents != nil {
		balance = *req.OpeningBalanceCents
	}

	account, err := h.store.Update(userID, id, req.Name, req.Kind, balance)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "an account with that name already exists"})
			return
		}
		h.logger.Error("update account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update account"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityAccount, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get account"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}

	if err := h.store.Delete(userID, id); err != nil {
		h.logger.Error("delete account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete account"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityAccount, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
