package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOrigin = errors.New("unknown_origin")
	ErrUnknownMode   = errors.New("unknown_shipping_mode")
)

// Origin identifies the warehouse a part ships from. Each (origin, mode)
// pair has a fixed billing unit; see billingUnits.
type Origin string

const (
	OriginMiami  Origin = "miami"
	OriginPanama Origin = "panama"
	OriginChina  Origin = "china"
	OriginMadrid Origin = "madrid"
)

// ShippingMode is how the part travels.
type ShippingMode string

const (
	ModeAir ShippingMode = "air"
	ModeSea ShippingMode = "sea"
)

// RateUnit is the unit a freight rate is quoted in.
type RateUnit string

const (
	UnitPerPound     RateUnit = "lb"
	UnitPerKilogram  RateUnit = "kg"
	UnitPerCubicFoot RateUnit = "ft3"
)

// billingUnits maps each (origin, mode) pair to the unit its freight rate is
// quoted in. Miami air rates come in pounds; every other air origin bills per
// kilogram, and all sea freight bills per cubic foot. Adding an origin means
// adding one row here, nothing else.
var billingUnits = map[Origin]map[ShippingMode]RateUnit{
	OriginMiami:  {ModeAir: UnitPerPound, ModeSea: UnitPerCubicFoot},
	OriginPanama: {ModeAir: UnitPerKilogram, ModeSea: UnitPerCubicFoot},
	OriginChina:  {ModeAir: UnitPerKilogram, ModeSea: UnitPerCubicFoot},
	OriginMadrid: {ModeAir: UnitPerKilogram, ModeSea: UnitPerCubicFoot},
}

// BillingUnit returns the unit convention for an (origin, mode) pair.
func BillingUnit(o Origin, m ShippingMode) (RateUnit, bool) {
	modes, ok := billingUnits[o]
	if !ok {
		return "", false
	}
	u, ok := modes[m]
	return u, ok
}

// Origins lists the known origins in stable order.
func Origins() []Origin {
	return []Origin{OriginMiami, OriginPanama, OriginChina, OriginMadrid}
}

// ParseOrigin converts a stored or submitted string into an Origin.
func ParseOrigin(s string) (Origin, error) {
	o := Origin(s)
	if _, ok := billingUnits[o]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrigin, s)
	}
	return o, nil
}

// ParseMode converts a stored or submitted string into a ShippingMode.
func ParseMode(s string) (ShippingMode, error) {
	switch m := ShippingMode(s); m {
	case ModeAir, ModeSea:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
