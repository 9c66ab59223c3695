// Package money provides fixed-point decimal helpers so monetary values
// never accumulate binary floating point error across the pipeline.
// Ratios, weights, probabilities and statistical outputs stay float64 in
// computation; ratios pass through this package only for the
// half-to-even storage rounding in ratio.RoundForStorage.
package money

import (
	"github.com/shopspring/decimal"
)

// StoragePlaces is the half-to-even rounding precision applied at the
// storage boundary.
const StoragePlaces = 6

func init() {
	decimal.DivisionPrecision = 16
}

// Round rounds d to StoragePlaces using half-to-even (banker's rounding),
// the mode required at the storage boundary.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(StoragePlaces)
}

// ToFloat converts a monetary decimal to float64 for use in a ratio or
// valuation formula that operates in double precision internally. The
// result is never persisted directly; it is re-quantized through Round
// before being written back as money.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// FromFloat converts a float64 valuation output back into fixed-point
// decimal, rounded to the storage precision.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// PerShare divides a monetary total by a share count, returning 0 when
// shares is zero instead of propagating Inf/NaN.
func PerShare(total decimal.Decimal, shares float64) float64 {
	if shares == 0 {
		return 0
	}
	return ToFloat(total) / shares
}
