package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/auth"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/httpx"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/mailer"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/numbering"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pdf"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/services"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/validation"
)

type QuoteHandler struct {
	DB     *gorm.DB
	Svc    *services.QuoteService
	Mailer *mailer.Mailer
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService, m *mailer.Mailer) *QuoteHandler {
	return &QuoteHandler{DB: db, Svc: svc, Mailer: m}
}

// itemReq mirrors services.ItemInput with JSON decimal fields.
type itemReq struct {
	Description string          `json:"description"`
	PartNumber  string          `json:"part_number"`
	UnitCostUSD decimal.Decimal `json:"unit_cost_usd"`
	Quantity    int             `json:"quantity"`
	LengthCM    decimal.Decimal `json:"length_cm"`
	WidthCM     decimal.Decimal `json:"width_cm"`
	HeightCM    decimal.Decimal `json:"height_cm"`
	WeightKG    decimal.Decimal `json:"weight_kg"`
	Origin      string          `json:"origin"`
	Mode        string          `json:"mode"`

	IntlHandlingUSD     decimal.Decimal `json:"intl_handling_usd"`
	NationalHandlingUSD decimal.Decimal `json:"national_handling_usd"`
	TaxPct              decimal.Decimal `json:"tax_pct"`
	ProfitFactor        decimal.Decimal `json:"profit_factor"`
}

type createQuoteReq struct {
	CustomerID      uint            `json:"customer_id"`
	PaysLocal       bool            `json:"pays_local"`
	ExchangeDiffPct decimal.Decimal `json:"exchange_diff_pct"`
	LocalTaxPct     decimal.Decimal `json:"local_tax_pct"`
	Notes           string          `json:"notes"`
	Items           []itemReq       `json:"items"`
}

// validateCreateQuote screens the payload field by field so negative money,
// dimensions, or out-of-range percentages are rejected with the offending
// field named, before any pricing runs.
func validateCreateQuote(req createQuoteReq) validation.Violations {
	v := validation.Violations{}
	for i, it := range req.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		validation.Required(field("description"), it.Description, v)
		validation.PositiveInt(field("quantity"), it.Quantity, v)
		validation.NonNegativeDecimal(field("unit_cost_usd"), it.UnitCostUSD, v)
		validation.NonNegativeDecimal(field("intl_handling_usd"), it.IntlHandlingUSD, v)
		validation.NonNegativeDecimal(field("national_handling_usd"), it.NationalHandlingUSD, v)
		validation.NonNegativeDecimal(field("length_cm"), it.LengthCM, v)
		validation.NonNegativeDecimal(field("width_cm"), it.WidthCM, v)
		validation.NonNegativeDecimal(field("height_cm"), it.HeightCM, v)
		validation.NonNegativeDecimal(field("weight_kg"), it.WeightKG, v)
		validation.PercentRange(field("tax_pct"), it.TaxPct, v)
		validation.NonNegativeDecimal(field("profit_factor"), it.ProfitFactor, v)
	}
	if req.PaysLocal {
		validation.NonNegativeDecimal("exchange_diff_pct", req.ExchangeDiffPct, v)
		validation.PercentRange("local_tax_pct", req.LocalTaxPct, v)
	}
	return v
}

// Create: POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createQuoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validateCreateQuote(req); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	in := services.CreateQuoteInput{
		CustomerID:      req.CustomerID,
		PaysLocal:       req.PaysLocal,
		ExchangeDiffPct: req.ExchangeDiffPct,
		LocalTaxPct:     req.LocalTaxPct,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.ItemInput{
			Description:         it.Description,
			PartNumber:          it.PartNumber,
			UnitCostUSD:         it.UnitCostUSD,
			Quantity:            it.Quantity,
			LengthCM:            it.LengthCM,
			WidthCM:             it.WidthCM,
			HeightCM:            it.HeightCM,
			WeightKG:            it.WeightKG,
			Origin:              it.Origin,
			Mode:                it.Mode,
			IntlHandlingUSD:     it.IntlHandlingUSD,
			NationalHandlingUSD: it.NationalHandlingUSD,
			TaxPct:              it.TaxPct,
			ProfitFactor:        it.ProfitFactor,
		})
	}

	quote, err := h.Svc.CreateDraft(uid, in)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":          quote.ID,
		"status":      quote.Status,
		"total_usd":   quote.TotalUSD.Round(2),
		"total_local": quote.TotalLocal.Round(2),
	})
}

// List: GET /quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	quotes, total, err := h.Svc.List(uid, limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotes, "total": total, "limit": limit, "offset": offset})
}

// PreviewNumber: GET /quotes/preview-number
// Shows the number Finalize would assign right now, without reserving it.
func (h *QuoteHandler) PreviewNumber(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	number, err := h.Svc.PreviewNumber(uid)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

// Finalize: POST /quotes/finalize?id=...
func (h *QuoteHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := queryID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	quote, err := h.Svc.Finalize(uid, id)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": quote.ID, "number": quote.Number, "status": quote.Status})
}

// PDF: GET /quotes/pdf?id=...
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := queryID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	data, quote, err := h.buildPDFData(uid, id)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	doc, err := pdf.QuotePDF(*data)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	filename := quote.Number
	if filename == "" {
		filename = "borrador-" + strconv.Itoa(int(quote.ID))
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cotizacion-`+filename+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// Email: POST /quotes/email?id=...
func (h *QuoteHandler) Email(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := queryID(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	data, quote, err := h.buildPDFData(uid, id)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	if quote.Number == "" {
		httpx.JSONError(w, http.StatusBadRequest, "quote_not_finalized", nil)
		return
	}
	if quote.Customer == nil || quote.Customer.Email == "" {
		httpx.JSONError(w, http.StatusBadRequest, "customer_has_no_email", nil)
		return
	}
	doc, err := pdf.QuotePDF(*data)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	if err := h.Mailer.SendQuote(quote.Customer.Email, quote.Number, doc); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			httpx.JSONError(w, http.StatusServiceUnavailable, "smtp_not_configured", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "email_send_failed", nil)
		return
	}
	if quote.Status == models.QuoteStatusFinal {
		_ = h.DB.Model(quote).Update("status", models.QuoteStatusSent).Error
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *QuoteHandler) buildPDFData(uid, id uint) (*pdf.QuoteData, *models.Quote, error) {
	quote, err := h.Svc.Get(uid, id)
	if err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := h.DB.First(&user, quote.UserID).Error; err != nil {
		return nil, nil, err
	}

	data := pdf.QuoteData{
		Number:      quote.Number,
		Date:        quote.CreatedAt.Format("2006-01-02"),
		AnalystName: user.FirstName + " " + user.LastName,
		TotalUSD:    pricing.FormatUSD(quote.TotalUSD),
		Notes:       quote.Notes,
	}
	if quote.Customer != nil {
		data.CustomerName = quote.Customer.Name
		data.CustomerRIF = quote.Customer.TaxID
	}
	if quote.PaysLocal {
		data.TotalLocal = pricing.FormatLocal(quote.TotalLocal)
	}
	for _, it := range quote.Items {
		line := pdf.QuoteItem{
			Description: it.Description,
			PartNumber:  it.PartNumber,
			Quantity:    it.Quantity,
			Origin:      it.Origin,
			Mode:        it.Mode,
			TotalUSD:    pricing.FormatUSD(it.TotalUSD),
		}
		if quote.PaysLocal {
			line.TotalLocal = pricing.FormatLocal(it.TotalLocal)
		}
		data.Items = append(data.Items, line)
	}
	return &data, quote, nil
}

func queryID(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid_id")
	}
	return uint(id), nil
}

// writeQuoteError maps service and engine failures onto the error taxonomy:
// validation and missing-configuration failures are 400s the analyst must fix,
// allocation exhaustion is a 409 needing administrative action.
func writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrQuoteNotDraft):
		httpx.JSONError(w, http.StatusConflict, "quote_not_draft", nil)
	case errors.Is(err, services.ErrQuoteEmpty), errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, pricing.ErrNegativeUnitCost), errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidProfitFactor), errors.Is(err, pricing.ErrNegativeAmount),
		errors.Is(err, pricing.ErrInvalidDimension), errors.Is(err, pricing.ErrInvalidPercent),
		errors.Is(err, pricing.ErrUnknownOrigin), errors.Is(err, pricing.ErrUnknownMode):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, pricing.ErrRateNotFound):
		httpx.JSONError(w, http.StatusConflict, "freight_rate_not_found", nil)
	case errors.Is(err, numbering.ErrRangeExhausted), errors.Is(err, numbering.ErrNoRangesLeft):
		httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
