package advice

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money formats d as dollars with thousands separators, e.g. $9,500,000.00.
func Money(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	cents := r.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.BigComma(whole.BigInt()), cents)
}

// Percent formats a ratio as a percentage, e.g. 0.0877 -> 8.77%.
func Percent(d decimal.Decimal) string {
	return d.Shift(2).Round(2).String() + "%"
}
