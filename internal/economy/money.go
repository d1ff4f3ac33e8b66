package economy

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// RoundCents rounds a dollar amount to two decimal places.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Cost returns amount × pricePerLb rounded to cents, computed in decimal so
// whole-cent prices never pick up float drift.
func Cost(amount int, pricePerLb float64) float64 {
	return decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromFloat(pricePerLb)).
		Round(2).
		InexactFloat64()
}

// CeilDollars returns ceil(v × rate) in whole dollars.
func CeilDollars(v, rate float64) float64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(rate)).Ceil().InexactFloat64()
}

// FormatMoney renders a dollar amount like "$12,345" or "-$300".
func FormatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.Commaf(RoundCents(-v))
	}
	return "$" + humanize.Commaf(RoundCents(v))
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
