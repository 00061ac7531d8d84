package models

import "time"

// Customer is the party a quote is addressed to.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"` // owning analyst
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`
	TaxID     string `gorm:"size:30"` // RIF
	CreatedAt time.Time
	UpdatedAt time.Time
}
