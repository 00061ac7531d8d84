package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus tracks a quote's lifecycle.
type QuoteStatus string

const (
	QuoteStatusDraft QuoteStatus = "draft"
	QuoteStatusFinal QuoteStatus = "final"
	QuoteStatusSent  QuoteStatus = "sent"
)

// Quote is one priced offer to a customer. Number stays empty while the quote
// is a draft; finalizing allocates it exactly once and it never changes after.
type Quote struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID uint `gorm:"index;not null"`
	User   User `gorm:"foreignKey:UserID"`

	CustomerID uint      `gorm:"index;not null"`
	Customer   *Customer `gorm:"foreignKey:CustomerID"`

	// Number is empty for drafts; the allocator guarantees uniqueness of
	// issued values (the SQL migration adds a partial unique index).
	Number string      `gorm:"size:20;index"`
	Status QuoteStatus `gorm:"size:20;not null;default:'draft'"`

	// PaysLocal marks quotes billed in bolívares alongside USD.
	PaysLocal bool

	TotalUSD   decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalLocal decimal.Decimal `gorm:"type:decimal(18,4)"`

	Notes string `gorm:"type:text"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID"`
}

// IsDraft reports whether the quote can still be edited.
func (q *Quote) IsDraft() bool { return q.Status == QuoteStatusDraft }

// QuoteItem persists one priced line: the raw attributes the analyst entered,
// the freight rate captured at compute time, and the computed totals. Charges
// hold the itemized breakdown. Rate updates after the fact never touch these
// rows.
type QuoteItem struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	QuoteID uint   `gorm:"index;not null"`
	Quote   *Quote `gorm:"foreignKey:QuoteID"`

	Description string `gorm:"size:500;not null"`
	PartNumber  string `gorm:"size:100"`

	UnitCostUSD decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int             `gorm:"not null"`
	LengthCM    decimal.Decimal `gorm:"type:decimal(10,2)"`
	WidthCM     decimal.Decimal `gorm:"type:decimal(10,2)"`
	HeightCM    decimal.Decimal `gorm:"type:decimal(10,2)"`
	WeightKG    decimal.Decimal `gorm:"type:decimal(10,3)"`

	Origin string `gorm:"size:20;not null"`
	Mode   string `gorm:"size:10;not null"`

	IntlHandlingUSD     decimal.Decimal `gorm:"type:decimal(18,4)"`
	NationalHandlingUSD decimal.Decimal `gorm:"type:decimal(18,4)"`
	TaxPct              decimal.Decimal `gorm:"type:decimal(8,4)"`
	ProfitFactor        decimal.Decimal `gorm:"type:decimal(8,4)"`
	ExchangeDiffPct     decimal.Decimal `gorm:"type:decimal(8,4)"`
	LocalTaxPct         decimal.Decimal `gorm:"type:decimal(8,4)"`

	// Freight rate as resolved when the item was priced.
	FreightRateValue decimal.Decimal `gorm:"type:decimal(18,4)"`
	FreightRateUnit  string          `gorm:"size:5"`
	WeightBasis      string          `gorm:"size:12"`

	TotalUSD   decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalLocal decimal.Decimal `gorm:"type:decimal(18,4)"`

	Charges []QuoteCharge `gorm:"foreignKey:QuoteItemID"`
}

// QuoteCharge is one persisted line of an item's cost breakdown, in display
// order.
type QuoteCharge struct {
	ID          uint            `gorm:"primaryKey"`
	QuoteItemID uint            `gorm:"index;not null"`
	Code        string          `gorm:"size:30;not null"`
	Label       string          `gorm:"size:100;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position    int             `gorm:"default:0"`
}
