package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/numbering"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/rates"
)

var (
	ErrQuoteNotFound    = errors.New("quote_not_found")
	ErrQuoteNotDraft    = errors.New("quote_not_draft")
	ErrQuoteEmpty       = errors.New("quote_empty")
	ErrCustomerNotFound = errors.New("customer_not_found")
)

// QuoteService ties the pricing engine, the rate provider, and the number
// allocator together around the persisted quote.
type QuoteService struct {
	db       *gorm.DB
	provider rates.Provider
	alloc    *numbering.Allocator
}

func NewQuoteService(db *gorm.DB, provider rates.Provider, alloc *numbering.Allocator) *QuoteService {
	return &QuoteService{db: db, provider: provider, alloc: alloc}
}

// ItemInput is one raw line as collected from the analyst.
type ItemInput struct {
	Description string
	PartNumber  string

	UnitCostUSD decimal.Decimal
	Quantity    int
	LengthCM    decimal.Decimal
	WidthCM     decimal.Decimal
	HeightCM    decimal.Decimal
	WeightKG    decimal.Decimal

	Origin string
	Mode   string

	IntlHandlingUSD     decimal.Decimal
	NationalHandlingUSD decimal.Decimal
	TaxPct              decimal.Decimal
	ProfitFactor        decimal.Decimal
}

// CreateQuoteInput is a draft quote as collected from the analyst.
type CreateQuoteInput struct {
	CustomerID      uint
	PaysLocal       bool
	ExchangeDiffPct decimal.Decimal
	LocalTaxPct     decimal.Decimal
	Notes           string
	Items           []ItemInput
}

// CreateDraft prices every line against the currently active freight rates
// and persists the quote with its itemized breakdown. Any validation or
// missing-rate failure aborts the whole quote before anything is written.
func (s *QuoteService) CreateDraft(userID uint, in CreateQuoteInput) (*models.Quote, error) {
	if len(in.Items) == 0 {
		return nil, ErrQuoteEmpty
	}
	var customer models.Customer
	if err := s.db.Where("id = ? AND user_id = ?", in.CustomerID, userID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	quote := models.Quote{
		UserID:     userID,
		CustomerID: customer.ID,
		Status:     models.QuoteStatusDraft,
		PaysLocal:  in.PaysLocal,
		Notes:      in.Notes,
	}

	for _, raw := range in.Items {
		item, rate, err := s.priceInput(raw, in)
		if err != nil {
			return nil, err
		}
		b, err := pricing.ComputeBreakdown(item, rate)
		if err != nil {
			return nil, err
		}

		row := models.QuoteItem{
			Description:         raw.Description,
			PartNumber:          raw.PartNumber,
			UnitCostUSD:         raw.UnitCostUSD,
			Quantity:            raw.Quantity,
			LengthCM:            raw.LengthCM,
			WidthCM:             raw.WidthCM,
			HeightCM:            raw.HeightCM,
			WeightKG:            raw.WeightKG,
			Origin:              string(item.Origin),
			Mode:                string(item.Mode),
			IntlHandlingUSD:     raw.IntlHandlingUSD,
			NationalHandlingUSD: raw.NationalHandlingUSD,
			TaxPct:              raw.TaxPct,
			ProfitFactor:        raw.ProfitFactor,
			ExchangeDiffPct:     item.ExchangeDiffPct,
			LocalTaxPct:         item.LocalTaxPct,
			FreightRateValue:    rate.Rate,
			FreightRateUnit:     string(rate.Unit),
			WeightBasis:         string(b.Freight.Basis),
			TotalUSD:            b.TotalUSD,
			TotalLocal:          b.TotalLocal,
		}
		for pos, c := range b.Components() {
			row.Charges = append(row.Charges, models.QuoteCharge{
				Code:     c.Code,
				Label:    c.Label,
				Amount:   c.Amount,
				Position: pos,
			})
		}
		quote.Items = append(quote.Items, row)
		quote.TotalUSD = quote.TotalUSD.Add(b.TotalUSD)
		quote.TotalLocal = quote.TotalLocal.Add(b.TotalLocal)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&quote).Error
	}); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *QuoteService) priceInput(raw ItemInput, in CreateQuoteInput) (pricing.LineItem, pricing.FreightRate, error) {
	origin, err := pricing.ParseOrigin(raw.Origin)
	if err != nil {
		return pricing.LineItem{}, pricing.FreightRate{}, err
	}
	mode, err := pricing.ParseMode(raw.Mode)
	if err != nil {
		return pricing.LineItem{}, pricing.FreightRate{}, err
	}
	item := pricing.LineItem{
		UnitCostUSD:         raw.UnitCostUSD,
		Quantity:            raw.Quantity,
		LengthCM:            raw.LengthCM,
		WidthCM:             raw.WidthCM,
		HeightCM:            raw.HeightCM,
		WeightKG:            raw.WeightKG,
		Origin:              origin,
		Mode:                mode,
		IntlHandlingUSD:     raw.IntlHandlingUSD,
		NationalHandlingUSD: raw.NationalHandlingUSD,
		TaxPct:              raw.TaxPct,
		ProfitFactor:        raw.ProfitFactor,
		PaysLocal:           in.PaysLocal,
		ExchangeDiffPct:     in.ExchangeDiffPct,
		LocalTaxPct:         in.LocalTaxPct,
	}
	if err := item.Validate(); err != nil {
		return pricing.LineItem{}, pricing.FreightRate{}, err
	}
	rate, err := s.provider.Active(origin, mode)
	if err != nil {
		return pricing.LineItem{}, pricing.FreightRate{}, err
	}
	return item, rate, nil
}

// Finalize allocates the quote number and marks the quote final. The number
// is always re-derived here, never taken from an earlier preview; the counter
// advance inside the allocator is the atomic step that makes it unique.
func (s *QuoteService) Finalize(userID, quoteID uint) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.Preload("Items").Where("id = ? AND user_id = ?", quoteID, userID).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if !quote.IsDraft() {
		return nil, ErrQuoteNotDraft
	}
	if len(quote.Items) == 0 {
		return nil, ErrQuoteEmpty
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	number, err := s.alloc.Generate(userID, user.DisplayInitial())
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"number": number, "status": models.QuoteStatusFinal}
	if err := s.db.Model(&quote).Updates(updates).Error; err != nil {
		return nil, err
	}
	quote.Number = number
	quote.Status = models.QuoteStatusFinal
	return &quote, nil
}

// PreviewNumber shows what Finalize would assign right now, without reserving
// anything. Stale by design if someone finalizes in between.
func (s *QuoteService) PreviewNumber(userID uint) (string, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", err
	}
	return s.alloc.Preview(userID, user.DisplayInitial())
}

// Get loads one quote with items and charges, scoped to the owner.
func (s *QuoteService) Get(userID, quoteID uint) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.Preload("Items.Charges").Preload("Customer").
		Where("id = ? AND user_id = ?", quoteID, userID).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns the analyst's quotes, newest first.
func (s *QuoteService) List(userID uint, limit, offset int) ([]models.Quote, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.Where("user_id = ?", userID)
	var total int64
	if err := q.Model(&models.Quote{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quotes []models.Quote
	err := q.Preload("Customer").Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error
	return quotes, total, err
}
