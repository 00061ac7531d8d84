package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var panamaAirRate = FreightRate{Origin: OriginPanama, Mode: ModeAir, Rate: d("2"), Unit: UnitPerKilogram}

func TestComputeBreakdownStages(t *testing.T) {
	item := LineItem{
		UnitCostUSD:         d("100"),
		Quantity:            2,
		LengthCM:            d("50"),
		WidthCM:             d("40"),
		HeightCM:            d("30"),
		WeightKG:            d("5"),
		Origin:              OriginPanama,
		Mode:                ModeAir,
		IntlHandlingUSD:     d("10"),
		NationalHandlingUSD: d("6"),
		TaxPct:              d("15"),
		ProfitFactor:        d("1.25"),
	}
	b, err := ComputeBreakdown(item, panamaAirRate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !b.FOBTotal.Equal(d("200")) {
		t.Fatalf("fob total = %s, want 200", b.FOBTotal)
	}
	if !b.IntlTax.Equal(d("30")) { // 200 * 15%
		t.Fatalf("intl tax = %s, want 30", b.IntlTax)
	}
	if !b.Freight.Cost.Equal(d("24")) { // 12 kg volumetric * $2
		t.Fatalf("freight = %s, want 24", b.Freight.Cost)
	}
	// subtotal 200+10+6+30+24 = 270; profit = 270 * 0.25
	if !b.Profit.Equal(d("67.5")) {
		t.Fatalf("profit = %s, want 67.5", b.Profit)
	}
	if !b.TotalUSD.Equal(d("337.5")) {
		t.Fatalf("total = %s, want 337.5", b.TotalUSD)
	}
	if b.PaysLocal || !b.TotalLocal.IsZero() {
		t.Fatalf("unexpected local side on a USD quote")
	}
}

func TestProfitFactorSentinel(t *testing.T) {
	item := airItem(OriginPanama)
	item.ProfitFactor = decimal.Zero
	b, err := ComputeBreakdown(item, panamaAirRate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !b.Profit.IsZero() {
		t.Fatalf("profit factor 0 must yield zero profit, got %s", b.Profit)
	}
	if !b.TotalUSD.Equal(b.FOBTotal.Add(b.Freight.Cost)) {
		t.Fatalf("total %s should be pass-through of subtotal", b.TotalUSD)
	}
}

func TestLocalCurrencySide(t *testing.T) {
	item := airItem(OriginPanama)
	item.UnitCostUSD = d("76") // subtotal: 76 + 24 freight = 100
	item.PaysLocal = true
	item.ExchangeDiffPct = d("20")
	item.LocalTaxPct = d("16")
	b, err := ComputeBreakdown(item, panamaAirRate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !b.TotalUSD.Equal(d("100")) {
		t.Fatalf("total usd = %s, want 100", b.TotalUSD)
	}
	if !b.LocalPrice.Equal(d("120")) { // 100 * 1.20
		t.Fatalf("local price = %s, want 120", b.LocalPrice)
	}
	if !b.LocalTax.Equal(d("19.2")) { // itemized separately, not folded in
		t.Fatalf("local tax = %s, want 19.2", b.LocalTax)
	}
	if !b.TotalLocal.Equal(d("139.2")) {
		t.Fatalf("total local = %s, want 139.2", b.TotalLocal)
	}
	comps := b.Components()
	if comps[len(comps)-2].Code != ComponentLocalTax {
		t.Fatalf("local tax must appear as its own component")
	}
}

func TestComponentsReconstructTotal(t *testing.T) {
	item := LineItem{
		UnitCostUSD:         d("33.37"),
		Quantity:            3,
		LengthCM:            d("17"),
		WidthCM:             d("23"),
		HeightCM:            d("11"),
		WeightKG:            d("4.4"),
		Origin:              OriginMiami,
		Mode:                ModeAir,
		IntlHandlingUSD:     d("7.5"),
		NationalHandlingUSD: d("3.25"),
		TaxPct:              d("12"),
		ProfitFactor:        d("1.3"),
	}
	rate := FreightRate{Origin: OriginMiami, Mode: ModeAir, Rate: d("1.85"), Unit: UnitPerPound}
	b, err := ComputeBreakdown(item, rate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	sum := b.FOBTotal.Add(b.IntlHandling).Add(b.NationalHandling).Add(b.IntlTax).Add(b.Freight.Cost).Add(b.Profit)
	if !sum.Equal(b.TotalUSD) {
		t.Fatalf("components sum %s != total %s", sum, b.TotalUSD)
	}
	for _, c := range b.Components() {
		if c.Amount.IsNegative() {
			t.Fatalf("component %s is negative: %s", c.Code, c.Amount)
		}
	}
	// The total is rounded independently; the drift against the sum of
	// pre-rounded parts stays within one cent.
	roundedSum := b.FOBTotal.Round(2).
		Add(b.IntlHandling.Round(2)).
		Add(b.NationalHandling.Round(2)).
		Add(b.IntlTax.Round(2)).
		Add(b.Freight.Cost.Round(2)).
		Add(b.Profit.Round(2))
	if roundedSum.Sub(b.RoundedTotalUSD()).Abs().GreaterThan(d("0.01")) {
		t.Fatalf("rounded drift too large: %s vs %s", roundedSum, b.RoundedTotalUSD())
	}
}

func TestComputeBreakdownValidation(t *testing.T) {
	rate := panamaAirRate
	cases := []struct {
		name   string
		mutate func(*LineItem)
		want   error
	}{
		{"negative cost", func(it *LineItem) { it.UnitCostUSD = d("-1") }, ErrNegativeUnitCost},
		{"zero quantity", func(it *LineItem) { it.Quantity = 0 }, ErrInvalidQuantity},
		{"negative quantity", func(it *LineItem) { it.Quantity = -3 }, ErrInvalidQuantity},
		{"negative profit factor", func(it *LineItem) { it.ProfitFactor = d("-0.5") }, ErrInvalidProfitFactor},
		{"negative intl handling", func(it *LineItem) { it.IntlHandlingUSD = d("-100") }, ErrNegativeAmount},
		{"negative national handling", func(it *LineItem) { it.NationalHandlingUSD = d("-5") }, ErrNegativeAmount},
		{"negative length", func(it *LineItem) { it.LengthCM = d("-100") }, ErrInvalidDimension},
		{"negative weight", func(it *LineItem) { it.WeightKG = d("-2") }, ErrInvalidDimension},
		{"negative tax pct", func(it *LineItem) { it.TaxPct = d("-10") }, ErrInvalidPercent},
		{"tax pct over 100", func(it *LineItem) { it.TaxPct = d("101") }, ErrInvalidPercent},
		{"negative local tax pct", func(it *LineItem) {
			it.PaysLocal = true
			it.LocalTaxPct = d("-16")
		}, ErrInvalidPercent},
	}
	for _, c := range cases {
		item := airItem(OriginPanama)
		c.mutate(&item)
		if _, err := ComputeBreakdown(item, rate); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestComponentsNeverNegative(t *testing.T) {
	// Negative monetary or dimensional inputs must be rejected outright, not
	// flow through and understate the quote.
	item := airItem(OriginPanama)
	item.IntlHandlingUSD = d("-100")
	if _, err := ComputeBreakdown(item, panamaAirRate); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("negative handling: err = %v, want ErrNegativeAmount", err)
	}

	seaRate := FreightRate{Origin: OriginChina, Mode: ModeSea, Rate: d("4.5"), Unit: UnitPerCubicFoot}
	seaItem := airItem(OriginChina)
	seaItem.Mode = ModeSea
	seaItem.LengthCM = d("-100")
	if _, err := ComputeBreakdown(seaItem, seaRate); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("negative length: err = %v, want ErrInvalidDimension", err)
	}

	ok := airItem(OriginPanama)
	b, err := ComputeBreakdown(ok, panamaAirRate)
	if err != nil {
		t.Fatalf("ComputeBreakdown: %v", err)
	}
	for _, c := range b.Components() {
		if c.Amount.IsNegative() {
			t.Fatalf("component %s is negative: %s", c.Code, c.Amount)
		}
	}
}

func TestComputeBreakdownMissingRate(t *testing.T) {
	item := airItem(OriginChina)
	if _, err := ComputeBreakdown(item, FreightRate{}); !errors.Is(err, ErrRateNotFound) {
		t.Fatalf("err = %v, want ErrRateNotFound", err)
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(d("1234.5")); got != "$1,234.50" {
		t.Fatalf("FormatUSD = %q", got)
	}
	if got := FormatUSD(d("44.0924")); got != "$44.09" {
		t.Fatalf("FormatUSD = %q", got)
	}
}
