package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/auth"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/httpx"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/rates"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/validation"
)

type RateHandler struct {
	DB       *gorm.DB
	Provider *rates.GormProvider
}

func NewRateHandler(db *gorm.DB, provider *rates.GormProvider) *RateHandler {
	return &RateHandler{DB: db, Provider: provider}
}

// isAdmin checks the authenticated user's role.
func (h *RateHandler) isAdmin(r *http.Request) bool {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return false
	}
	var user models.User
	if err := h.DB.Preload("Role").First(&user, uid).Error; err != nil {
		return false
	}
	return user.Role.Name == models.RoleAdmin
}

// List: GET /rates — visible to any authenticated analyst.
func (h *RateHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Provider.All()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_rates", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows})
}

// Upsert: POST /rates — admin-only; replaces the active rate for a pair.
func (h *RateHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.isAdmin(r) {
		httpx.JSONError(w, http.StatusForbidden, "admin_only", nil)
		return
	}
	var req struct {
		Origin string          `json:"origin"`
		Mode   string          `json:"mode"`
		Rate   decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	origin, err := pricing.ParseOrigin(req.Origin)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_origin", nil)
		return
	}
	mode, err := pricing.ParseMode(req.Mode)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_shipping_mode", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveDecimal("rate", req.Rate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.Provider.Upsert(pricing.FreightRate{Origin: origin, Mode: mode, Rate: req.Rate}, uid); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_rate", nil)
		return
	}
	unit, _ := pricing.BillingUnit(origin, mode)
	httpx.JSON(w, http.StatusOK, map[string]any{"origin": origin, "mode": mode, "rate": req.Rate, "unit": unit})
}
