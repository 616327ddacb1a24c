package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places in the smallest currency unit (cents).
const CurrencyPlaces int32 = 2

// divPrecision is the scale kept by Div before any explicit rounding.
const divPrecision int32 = 16

// ErrDivideByZero is returned by Div when the divisor is zero.
var ErrDivideByZero = errors.New("division by zero")

// Unit is the smallest currency subdivision (0.01).
var Unit = decimal.New(1, -CurrencyPlaces)

// Mode selects how a value is rounded to a fixed number of places.
type Mode int

const (
	HalfEven Mode = iota // banker's rounding
	HalfUp               // half away from zero
	Up                   // away from zero, used for compliance minimums
	Down                 // toward zero
	Ceil                 // toward +inf
	Floor                // toward -inf
)

func (m Mode) String() string {
	switch m {
	case HalfEven:
		return "half-even"
	case HalfUp:
		return "half-up"
	case Up:
		return "up"
	case Down:
		return "down"
	case Ceil:
		return "ceil"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Round rounds d to the given number of decimal places using mode.
func Round(d decimal.Decimal, places int32, mode Mode) decimal.Decimal {
	switch mode {
	case HalfUp:
		return d.Round(places)
	case Up:
		return d.RoundUp(places)
	case Down:
		return d.RoundDown(places)
	case Ceil:
		return d.RoundCeil(places)
	case Floor:
		return d.RoundFloor(places)
	default:
		return d.RoundBank(places)
	}
}

// Currency rounds d to whole cents.
func Currency(d decimal.Decimal, mode Mode) decimal.Decimal {
	return Round(d, CurrencyPlaces, mode)
}

// Div divides a by b, keeping divPrecision places. A zero divisor is an error, never a panic.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivideByZero
	}
	return a.DivRound(b, divPrecision), nil
}

// Pow raises base to a non-negative integer power by repeated multiplication,
// so the result is exact.
func Pow(base decimal.Decimal, n int) (decimal.Decimal, error) {
	if n < 0 {
		return decimal.Zero, fmt.Errorf("negative exponent %d", n)
	}
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base)
	}
	return result, nil
}

// Sum adds all values; the sum of nothing is zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return Min(Max(d, lo), hi)
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	return Max(d, decimal.Zero)
}

// WithinUnit reports whether a and b differ by at most one cent.
func WithinUnit(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Unit)
}

// Parse reads a decimal from its string form.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
