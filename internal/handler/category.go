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

type CategoryHandler struct {
	store  *store.CategoryStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCategoryHandler(s *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{store: s, hub: hub, logger: logger}
}

func (h *CategoryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		Name              string `json:"name"`
		MonthlyLimitCents int64  `json:"monthly_limit_cents"`
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
	if req.MonthlyLimitCents < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "monthly limit must not be negative"})
		return
	}

	category, err := h.store.Create(userID, req.Name, req.MonthlyLimitCents)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a category with that name already exists"})
			return
		}
		h.logger.Error("create category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create category"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionCreated, category.ID, nil))
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	category, err := h.store.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get category"})
		return
	}
	if category == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get category"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	var req struct {
		Name              string `json:"name"`
		MonthlyLimitCents *int64 `json:"monthly_limit_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	limit := existing.MonthlyLimitCents
	if req.MonthlyLimitCents != nil {
		limit = *req.MonthlyLimitCents
	}
	if limit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "monthly limit must not be negative"})
		return
	}

	category, err := h.store.Update(userID, id, req.Name, limit)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a category with that name already exists"})
			return
		}
		h.logger.Error("update category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update category"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get category"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	if err := h.store.Delete(userID, id); err != nil {
		h.logger.Error("delete category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete category"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityCategory, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
