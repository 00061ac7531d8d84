package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Validation failures reject the item before any computation runs.
var (
	ErrNegativeUnitCost    = errors.New("negative_unit_cost")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidProfitFactor = errors.New("invalid_profit_factor")
	ErrNegativeAmount      = errors.New("negative_amount")
	ErrInvalidDimension    = errors.New("invalid_dimension")
	ErrInvalidPercent      = errors.New("invalid_percent")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LineItem carries everything the engine needs to price one imported part.
// All percentages are expressed 0-100; ProfitFactor is multiplicative
// (1.25 = 25% markup) with 0 as the explicit "no markup" sentinel.
type LineItem struct {
	UnitCostUSD decimal.Decimal
	Quantity    int

	LengthCM decimal.Decimal
	WidthCM  decimal.Decimal
	HeightCM decimal.Decimal
	WeightKG decimal.Decimal

	Origin Origin
	Mode   ShippingMode

	IntlHandlingUSD     decimal.Decimal
	NationalHandlingUSD decimal.Decimal
	TaxPct              decimal.Decimal
	ProfitFactor        decimal.Decimal

	// Local-currency pricing, applied only when the buyer pays in bolívares.
	PaysLocal       bool
	ExchangeDiffPct decimal.Decimal
	LocalTaxPct     decimal.Decimal
}

// Validate rejects items the engine must not price. Every downstream
// component amount is non-negative exactly because the inputs are screened
// here: no negative money, no negative dimensions or weight, percentages
// inside 0-100.
func (it LineItem) Validate() error {
	if it.UnitCostUSD.IsNegative() {
		return ErrNegativeUnitCost
	}
	if it.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if it.ProfitFactor.IsNegative() {
		return ErrInvalidProfitFactor
	}
	if it.IntlHandlingUSD.IsNegative() || it.NationalHandlingUSD.IsNegative() {
		return ErrNegativeAmount
	}
	if it.LengthCM.IsNegative() || it.WidthCM.IsNegative() || it.HeightCM.IsNegative() || it.WeightKG.IsNegative() {
		return ErrInvalidDimension
	}
	if it.TaxPct.IsNegative() || it.TaxPct.GreaterThan(hundred) {
		return ErrInvalidPercent
	}
	if it.PaysLocal {
		if it.ExchangeDiffPct.IsNegative() {
			return ErrInvalidPercent
		}
		if it.LocalTaxPct.IsNegative() || it.LocalTaxPct.GreaterThan(hundred) {
			return ErrInvalidPercent
		}
	}
	return nil
}

// Component codes, in breakdown order.
const (
	ComponentFOBUnit          = "fob_unit"
	ComponentFOBTotal         = "fob_total"
	ComponentIntlHandling     = "intl_handling"
	ComponentNationalHandling = "national_handling"
	ComponentIntlTax          = "intl_tax"
	ComponentFreight          = "freight"
	ComponentProfit           = "profit"
	ComponentTotalUSD         = "total_usd"
	ComponentLocalPrice       = "local_price"
	ComponentLocalTax         = "local_tax"
	ComponentTotalLocal       = "total_local"
)

// Component is one named line of a cost breakdown. Amounts keep full
// precision; rounding happens only when formatting for display.
type Component struct {
	Code   string
	Label  string
	Amount decimal.Decimal
}

// CostBreakdown is the itemized result of pricing one line item. Field values
// are exact (unrounded); TotalUSD equals FOBTotal + IntlHandling +
// NationalHandling + IntlTax + Freight.Cost + Profit by construction.
type CostBreakdown struct {
	FOBUnit          decimal.Decimal
	FOBTotal         decimal.Decimal
	IntlHandling     decimal.Decimal
	NationalHandling decimal.Decimal
	IntlTax          decimal.Decimal
	Freight          FreightResult
	Profit           decimal.Decimal
	TotalUSD         decimal.Decimal

	// Local-currency side, populated only when the item pays in bolívares.
	PaysLocal  bool
	LocalPrice decimal.Decimal
	LocalTax   decimal.Decimal
	TotalLocal decimal.Decimal
}

// ComputeBreakdown derives the full cost breakdown for one item against the
// freight rate resolved at compute time. Pure and deterministic; the stages
// run in a fixed order, each consuming only what came before it:
//
//	FOB total -> handling -> international tax -> freight -> profit -> USD
//	price -> optional local-currency price and tax.
func ComputeBreakdown(item LineItem, rate FreightRate) (*CostBreakdown, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	fobTotal := item.UnitCostUSD.Mul(decimal.NewFromInt(int64(item.Quantity)))
	intlTax := fobTotal.Mul(item.TaxPct).Div(hundred)

	freight, err := ResolveFreight(item, rate)
	if err != nil {
		return nil, err
	}

	subtotal := fobTotal.
		Add(item.IntlHandlingUSD).
		Add(item.NationalHandlingUSD).
		Add(intlTax).
		Add(freight.Cost)

	// ProfitFactor 0 is the no-markup sentinel; otherwise the markup is the
	// factor applied to the running subtotal before profit.
	profit := decimal.Zero
	if item.ProfitFactor.IsPositive() {
		profit = subtotal.Mul(item.ProfitFactor.Sub(one))
	}

	b := &CostBreakdown{
		FOBUnit:          item.UnitCostUSD,
		FOBTotal:         fobTotal,
		IntlHandling:     item.IntlHandlingUSD,
		NationalHandling: item.NationalHandlingUSD,
		IntlTax:          intlTax,
		Freight:          freight,
		Profit:           profit,
		TotalUSD:         subtotal.Add(profit),
		PaysLocal:        item.PaysLocal,
	}

	if item.PaysLocal {
		b.LocalPrice = b.TotalUSD.Mul(one.Add(item.ExchangeDiffPct.Div(hundred)))
		b.LocalTax = b.LocalPrice.Mul(item.LocalTaxPct).Div(hundred)
		b.TotalLocal = b.LocalPrice.Add(b.LocalTax)
	}

	return b, nil
}

// Components returns the ordered itemized lines for persistence and document
// rendering. Amounts are exact; callers round at display time.
func (b *CostBreakdown) Components() []Component {
	out := []Component{
		{ComponentFOBUnit, "FOB unit cost", b.FOBUnit},
		{ComponentFOBTotal, "FOB total", b.FOBTotal},
		{ComponentIntlHandling, "International handling", b.IntlHandling},
		{ComponentNationalHandling, "National handling", b.NationalHandling},
		{ComponentIntlTax, "International tax", b.IntlTax},
		{ComponentFreight, "Freight", b.Freight.Cost},
		{ComponentProfit, "Profit", b.Profit},
		{ComponentTotalUSD, "Total USD", b.TotalUSD},
	}
	if b.PaysLocal {
		out = append(out,
			Component{ComponentLocalPrice, "Price (Bs)", b.LocalPrice},
			Component{ComponentLocalTax, "Local sales tax (Bs)", b.LocalTax},
			Component{ComponentTotalLocal, "Total (Bs)", b.TotalLocal},
		)
	}
	return out
}

// RoundedTotalUSD rounds the exact USD total to cents. The total is rounded
// independently of the itemized lines, so summing individually rounded
// components may differ from it by at most one cent.
func (b *CostBreakdown) RoundedTotalUSD() decimal.Decimal {
	return b.TotalUSD.Round(2)
}

// RoundedTotalLocal rounds the exact local-currency total to two decimals.
func (b *CostBreakdown) RoundedTotalLocal() decimal.Decimal {
	return b.TotalLocal.Round(2)
}
