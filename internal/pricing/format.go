package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	usdPrinter   = message.NewPrinter(language.AmericanEnglish)
	localPrinter = message.NewPrinter(language.MustParse("es-VE"))
)

// FormatUSD renders an amount as a grouped US dollar string, e.g. "$1,234.50".
// Rounding to cents happens here, at the display boundary.
func FormatUSD(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}

// FormatLocal renders an amount in bolívares with es-VE grouping,
// e.g. "Bs 1.234,50".
func FormatLocal(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return localPrinter.Sprintf("Bs %.2f", f)
}
