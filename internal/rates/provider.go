// Package rates resolves and maintains the freight reference rates the
// pricing engine consumes. The engine never reads the store itself; it is
// handed the rate resolved at compute time, so later updates cannot
// retroactively change issued quotes.
package rates

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
)

// Provider resolves the single active rate for an (origin, mode) pair.
type Provider interface {
	Active(origin pricing.Origin, mode pricing.ShippingMode) (pricing.FreightRate, error)
}

// GormProvider is the database-backed Provider plus the administrative write
// side.
type GormProvider struct {
	db *gorm.DB
}

func NewGormProvider(db *gorm.DB) *GormProvider { return &GormProvider{db: db} }

// Active returns the configured rate for the pair, or
// pricing.ErrRateNotFound when none exists. It never substitutes zero.
func (p *GormProvider) Active(origin pricing.Origin, mode pricing.ShippingMode) (pricing.FreightRate, error) {
	var row models.FreightRate
	err := p.db.Where("origin = ? AND mode = ?", string(origin), string(mode)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.FreightRate{}, pricing.ErrRateNotFound
	}
	if err != nil {
		return pricing.FreightRate{}, err
	}
	return pricing.FreightRate{
		Origin: origin,
		Mode:   mode,
		Rate:   row.Rate,
		Unit:   pricing.RateUnit(row.Unit),
	}, nil
}

// Upsert replaces the active rate for the pair. The unit is forced to the
// pair's billing convention so a misconfigured unit can never reach the
// engine. Admin-only at the handler layer.
func (p *GormProvider) Upsert(rate pricing.FreightRate, updatedBy uint) error {
	unit, ok := pricing.BillingUnit(rate.Origin, rate.Mode)
	if !ok {
		return pricing.ErrRateNotFound
	}
	if rate.Rate.IsNegative() || rate.Rate.IsZero() {
		return errors.New("invalid_rate_value")
	}
	row := models.FreightRate{
		Origin:    string(rate.Origin),
		Mode:      string(rate.Mode),
		Rate:      rate.Rate,
		Unit:      string(unit),
		UpdatedBy: updatedBy,
	}
	return p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origin"}, {Name: "mode"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "unit", "updated_by", "updated_at"}),
	}).Create(&row).Error
}

// All lists the configured rates for the admin screen.
func (p *GormProvider) All() ([]models.FreightRate, error) {
	var rows []models.FreightRate
	err := p.db.Order("origin, mode").Find(&rows).Error
	return rows, err
}
