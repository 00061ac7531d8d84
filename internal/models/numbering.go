package models

import "time"

// UserRange binds an analyst to their exclusive quote-number band. The unique
// indexes on user and on range start make double assignment impossible even
// under concurrent first use.
type UserRange struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"not null;uniqueIndex:uk_user_ranges_user"`
	RangeStart int  `gorm:"not null;uniqueIndex:uk_user_ranges_start"`
	RangeEnd   int  `gorm:"not null"`
	CreatedAt  time.Time
}

// QuoteSequence is the per-(analyst, year) counter behind quote numbers.
// LastIssued only ever moves forward, by conditional update.
type QuoteSequence struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"not null;uniqueIndex:uk_quote_sequences_user_year"`
	Year       int  `gorm:"not null;uniqueIndex:uk_quote_sequences_user_year"`
	LastIssued int  `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
