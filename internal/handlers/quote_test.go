package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/auth"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/mailer"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/numbering"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/rates"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/services"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Customer{},
		&models.Quote{}, &models.QuoteItem{}, &models.QuoteCharge{},
		&models.FreightRate{}, &models.UserRange{}, &models.QuoteSequence{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newHandler(t *testing.T, db *gorm.DB) *QuoteHandler {
	t.Helper()
	store := numbering.NewGormStore(db)
	alloc := numbering.NewWithClock(store, func() time.Time {
		return time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	})
	svc := services.NewQuoteService(db, rates.NewGormProvider(db), alloc)
	return NewQuoteHandler(db, svc, mailer.New("", 0, "", "", ""))
}

func seedHandlerFixtures(t *testing.T, db *gorm.DB) (models.User, models.Customer) {
	t.Helper()
	role := models.Role{Name: models.RoleAnalyst}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Email: "ana@test", Password: "x", FirstName: "Ana", RoleID: role.ID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	customer := models.Customer{UserID: user.ID, Name: "Repuestos La Guaira", Email: "compras@test"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	p := rates.NewGormProvider(db)
	if err := p.Upsert(pricing.FreightRate{Origin: pricing.OriginMiami, Mode: pricing.ModeAir, Rate: decimal.RequireFromString("2")}, user.ID); err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	return user, customer
}

func authedRequest(t *testing.T, method, target, body string, uid uint) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(auth.WithUserID(req.Context(), uid))
}

func createQuoteBody(customerID uint) string {
	return `{"customer_id":` + strconv.Itoa(int(customerID)) + `,"items":[{` +
		`"description":"Bomba de agua","part_number":"WP-120",` +
		`"unit_cost_usd":"100","quantity":1,` +
		`"length_cm":"10","width_cm":"10","height_cm":"10","weight_kg":"10",` +
		`"origin":"miami","mode":"air",` +
		`"tax_pct":"0","profit_factor":"0"}]}`
}

func TestQuoteCreateAndFinalizeFlow(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", createQuoteBody(customer.ID), user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID       uint            `json:"id"`
		TotalUSD decimal.Decimal `json:"total_usd"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 100 FOB + 10 kg * 2.20462 * $2 = 144.0924 -> 144.09 at the boundary.
	if !created.TotalUSD.Equal(decimal.RequireFromString("144.09")) {
		t.Fatalf("total = %s, want 144.09", created.TotalUSD)
	}

	// Preview, then finalize: the committed number matches the preview.
	w = httptest.NewRecorder()
	h.PreviewNumber(w, authedRequest(t, http.MethodGet, "/quotes/preview-number", "", user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("preview: expected 200 got %d", w.Code)
	}
	var preview struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.Number != "2026-30000-A" {
		t.Fatalf("preview = %q", preview.Number)
	}

	w = httptest.NewRecorder()
	h.Finalize(w, authedRequest(t, http.MethodPost, "/quotes/finalize?id="+strconv.Itoa(int(created.ID)), "", user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("finalize: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var finalized struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &finalized); err != nil {
		t.Fatalf("decode finalize: %v", err)
	}
	if finalized.Number != preview.Number {
		t.Fatalf("finalized %q != previewed %q", finalized.Number, preview.Number)
	}
}

func TestQuoteCreateMissingRate(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	body := strings.Replace(createQuoteBody(customer.ID), `"origin":"miami"`, `"origin":"china"`, 1)
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", body, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "freight_rate_not_found") {
		t.Fatalf("missing rate not surfaced: %s", w.Body.String())
	}
}

func TestQuoteCreateValidationError(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	body := strings.Replace(createQuoteBody(customer.ID), `"quantity":1`, `"quantity":0`, 1)
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", body, user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestQuoteCreateRejectsNegativeInputs(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	cases := []struct {
		name   string
		mutate func(string) string
		field  string
	}{
		{"negative handling", func(b string) string {
			return strings.Replace(b, `"tax_pct":"0"`, `"intl_handling_usd":"-100","tax_pct":"0"`, 1)
		}, "items[0].intl_handling_usd"},
		{"negative length", func(b string) string {
			return strings.Replace(b, `"length_cm":"10"`, `"length_cm":"-100"`, 1)
		}, "items[0].length_cm"},
		{"negative weight", func(b string) string {
			return strings.Replace(b, `"weight_kg":"10"`, `"weight_kg":"-1"`, 1)
		}, "items[0].weight_kg"},
		{"tax over 100", func(b string) string {
			return strings.Replace(b, `"tax_pct":"0"`, `"tax_pct":"120"`, 1)
		}, "items[0].tax_pct"},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		h.Create(w, authedRequest(t, http.MethodPost, "/quotes", c.mutate(createQuoteBody(customer.ID)), user.ID))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d body=%s", c.name, w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), c.field) {
			t.Fatalf("%s: violation does not name %q: %s", c.name, c.field, w.Body.String())
		}
		var count int64
		if err := db.Model(&models.Quote{}).Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Fatalf("%s: rejected quote was persisted", c.name)
		}
	}
}

func TestQuotePDFDownload(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", createQuoteBody(customer.ID), user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = httptest.NewRecorder()
	h.PDF(w, authedRequest(t, http.MethodGet, "/quotes/pdf?id="+strconv.Itoa(int(created.ID)), "", user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("body does not look like a PDF")
	}
}

func TestQuoteListScopedToUser(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", createQuoteBody(customer.ID), user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	other := models.User{Email: "otro@test", Password: "x", FirstName: "Otro"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("other: %v", err)
	}
	w = httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/quotes", "", other.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Items []models.Quote `json:"items"`
		Total int64          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 0 || list.Total != 0 {
		t.Fatalf("cross-user list leaked quotes: %#v", list)
	}
}

func TestEmailRequiresFinalizedQuote(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedHandlerFixtures(t, db)
	h := newHandler(t, db)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/quotes", createQuoteBody(customer.ID), user.ID))
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = httptest.NewRecorder()
	h.Email(w, authedRequest(t, http.MethodPost, "/quotes/email?id="+strconv.Itoa(int(created.ID)), "", user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("draft email: expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}
