package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FreightRate is the administrator-maintained reference rate for one
// (origin, mode) pair. The composite unique index keeps exactly one active
// rate per pair; updates replace the row in place and never rewrite quotes
// that were priced against the previous value.
type FreightRate struct {
	ID        uint            `gorm:"primaryKey"`
	Origin    string          `gorm:"size:20;not null;uniqueIndex:uk_freight_rates_pair"`
	Mode      string          `gorm:"size:10;not null;uniqueIndex:uk_freight_rates_pair"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit      string          `gorm:"size:5;not null"`
	UpdatedBy uint            // admin user id of the last change
	CreatedAt time.Time
	UpdatedAt time.Time
}
