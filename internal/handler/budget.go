package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/dukerupert/mathom/internal/auth"
	"github.com/dukerupert/mathom/internal/model"
	"github.com/dukerupert/mathom/internal/store"
	"github.com/dukerupert/mathom/internal/websocket"
)

var monthRegexp = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type BudgetHandler struct {
	store      *store.BudgetStore
	categories *store.CategoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewBudgetHandler(s *store.BudgetStore, cs *store.CategoryStore, hub *websocket.Hub, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{store: s, categories: cs, hub: hub, logger: logger}
}

func (h *BudgetHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List returns the budgets for one month, given as ?month=YYYY-MM.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if !monthRegexp.MatchString(month) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	budgets, err := h.store.ListByMonth(auth.UserID(r.Context()), month)
	if err != nil {
		h.logger.Error("list budgets", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list budgets"})
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

// Set creates or updates the budget for a category and month.
func (h *BudgetHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		CategoryID  int64  `json:"category_id"`
		Month       string `json:"month"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if !monthRegexp.MatchString(req.Month) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}
	if req.AmountCents < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must not be negative"})
		return
	}

	category, err := h.categories.GetByID(userID, req.CategoryID)
	if err != nil {
		h.logger.Error("get category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get category"})
		return
	}
	if category == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	budget, err := h.store.Upsert(userID, req.CategoryID, req.Month, req.AmountCents)
	if err != nil {
		h.logger.Error("set budget", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set budget"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityBudget, websocket.ActionUpdated, budget.ID, map[string]any{"month": budget.Month}))
	writeJSON(w, http.StatusOK, budget)
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.store.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get budget", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get budget"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "budget not found"})
		return
	}

	if err := h.store.Delete(userID, id); err != nil {
		h.logger.Error("delete budget", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete budget"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityBudget, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
