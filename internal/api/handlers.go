package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/truerooha/zakazapp-back/internal/domain"
	"github.com/truerooha/zakazapp-back/internal/store"
)

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.Categories(r.Context())
	if err != nil {
		h.serverError(w, "list categories", err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	h.writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) getDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.store.Dishes(r.Context())
	if err != nil {
		h.serverError(w, "list dishes", err)
		return
	}
	if dishes == nil {
		dishes = []domain.Dish{}
	}
	h.writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getAllowedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.AllowedUsers(r.Context())
	if err != nil {
		h.serverError(w, "list allowed users", err)
		return
	}
	if users == nil {
		users = []string{}
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) addAllowedUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		h.badRequest(w, "userId is required")
		return
	}
	userID := strings.TrimSpace(req.UserID)

	created, err := h.store.AddAllowedUser(r.Context(), userID)
	if err != nil {
		h.serverError(w, "add allowed user", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"userId":  userID,
		"created": created,
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string                  `json:"userId"`
		Items  []domain.OrderItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.badRequest(w, "userId is required")
		return
	}
	if len(req.Items) == 0 {
		h.badRequest(w, "items are required")
		return
	}
	for _, it := range req.Items {
		if it.DishID == "" || it.Quantity <= 0 {
			h.badRequest(w, "each item needs dishId and a positive quantity")
			return
		}
	}

	order, err := h.store.CreateOrder(r.Context(), strings.TrimSpace(req.UserID), domain.Day(h.now()), req.Items)
	if err != nil {
		h.serverError(w, "create order", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getLatestOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.LatestOrder(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.serverError(w, "latest order", err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, "delete order", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// getPersonalToday returns the live settlement for today's orders: one
// line per participant plus the summary. Before the cutoff it is a
// preview; after the cutoff it matches what the bot delivers.
func (h *Handler) getPersonalToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.store.Settings(ctx)
	if err != nil {
		h.serverError(w, "read settings", err)
		return
	}
	totals, err := h.store.UserTotals(ctx, domain.Day(h.now()))
	if err != nil {
		h.serverError(w, "user totals", err)
		return
	}
	h.writeJSON(w, http.StatusOK, domain.Settle(totals, settings))
}

func (h *Handler) getSummaryToday(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.DishTotals(r.Context(), domain.Day(h.now()))
	if err != nil {
		h.serverError(w, "dish totals", err)
		return
	}
	if totals == nil {
		totals = []domain.DishTotal{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"dishes": totals})
}

// settingsDTO mirrors the frontend contract where closeAt is null when
// no cutoff is configured.
type settingsDTO struct {
	DiscountPercent float64 `json:"discountPercent"`
	DeliveryFee     float64 `json:"deliveryFee"`
	CloseAt         *string `json:"closeAt"`
}

func toDTO(s domain.Settings) settingsDTO {
	dto := settingsDTO{DiscountPercent: s.DiscountPercent, DeliveryFee: s.DeliveryFee}
	if s.CloseAt != "" {
		dto.CloseAt = &s.CloseAt
	}
	return dto
}

func (dto settingsDTO) toDomain() domain.Settings {
	s := domain.Settings{DiscountPercent: dto.DiscountPercent, DeliveryFee: dto.DeliveryFee}
	if dto.CloseAt != nil {
		s.CloseAt = strings.TrimSpace(*dto.CloseAt)
	}
	return s
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		h.serverError(w, "read settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toDTO(settings))
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var dto settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.badRequest(w, "invalid body")
		return
	}
	if err := h.store.SaveSettings(r.Context(), dto.toDomain()); err != nil {
		h.serverError(w, "save settings", err)
		return
	}
	// Echo back the normalized value.
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		h.serverError(w, "read settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toDTO(settings))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response failed", zap.Error(err))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
}
