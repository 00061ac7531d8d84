package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrRateNotFound is returned when no freight rate is configured for an
// (origin, mode) pair, or the configured rate does not match the pair's
// billing unit. The calculation must stop rather than price freight at zero.
var ErrRateNotFound = errors.New("freight_rate_not_found")

var (
	volumetricDivisor      = decimal.NewFromInt(5000)
	poundsPerKilogram      = decimal.RequireFromString("2.20462")
	cubicFeetPerCubicMeter = decimal.RequireFromString("35.3147")
	cmPerCubicMeter        = decimal.NewFromInt(1_000_000)
)

// FreightRate is the active reference rate for an (origin, mode) pair,
// resolved by the caller at compute time. Later rate updates never touch
// quotes already computed against this value.
type FreightRate struct {
	Origin Origin
	Mode   ShippingMode
	Rate   decimal.Decimal
	Unit   RateUnit
}

// WeightBasis records which weight governed an air shipment's freight.
type WeightBasis string

const (
	BasisReal       WeightBasis = "real"
	BasisVolumetric WeightBasis = "volumetric"
	BasisVolume     WeightBasis = "volume" // sea freight bills space, not weight
)

// FreightResult itemizes the freight leg of a breakdown.
type FreightResult struct {
	Cost        decimal.Decimal
	BillableQty decimal.Decimal // in Unit: kg, lb or ft3
	Unit        RateUnit
	Basis       WeightBasis
}

// VolumetricWeight converts dimensions in centimeters to the air-freight
// volumetric weight in kilograms: (L*W*H)/5000. The divisor is the industry
// standard for air cargo, not a unit conversion. Returns zero when any
// dimension is zero.
func VolumetricWeight(lengthCM, widthCM, heightCM decimal.Decimal) decimal.Decimal {
	return lengthCM.Mul(widthCM).Mul(heightCM).Div(volumetricDivisor)
}

// ResolveFreight prices the freight leg of an item against the resolved rate.
//
// Air: the billable weight is the greater of actual and volumetric weight;
// Miami rates are pound-denominated, so kilograms convert at 2.20462 lb/kg
// before multiplying. Sea: the billable quantity is the volume in cubic feet
// (cm³ -> m³ -> ft³ at 35.3147).
func ResolveFreight(item LineItem, rate FreightRate) (FreightResult, error) {
	unit, ok := BillingUnit(item.Origin, item.Mode)
	if !ok || rate.Unit != unit || rate.Origin != item.Origin || rate.Mode != item.Mode {
		return FreightResult{}, ErrRateNotFound
	}

	switch item.Mode {
	case ModeAir:
		volumetric := VolumetricWeight(item.LengthCM, item.WidthCM, item.HeightCM)
		billableKG := item.WeightKG
		basis := BasisReal
		if volumetric.GreaterThan(item.WeightKG) {
			billableKG = volumetric
			basis = BasisVolumetric
		}
		qty := billableKG
		if unit == UnitPerPound {
			qty = billableKG.Mul(poundsPerKilogram)
		}
		return FreightResult{
			Cost:        qty.Mul(rate.Rate),
			BillableQty: qty,
			Unit:        unit,
			Basis:       basis,
		}, nil
	case ModeSea:
		cubicMeters := item.LengthCM.Mul(item.WidthCM).Mul(item.HeightCM).Div(cmPerCubicMeter)
		cubicFeet := cubicMeters.Mul(cubicFeetPerCubicMeter)
		return FreightResult{
			Cost:        cubicFeet.Mul(rate.Rate),
			BillableQty: cubicFeet,
			Unit:        unit,
			Basis:       BasisVolume,
		}, nil
	default:
		return FreightResult{}, ErrRateNotFound
	}
}
