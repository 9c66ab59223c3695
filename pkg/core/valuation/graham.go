package valuation

import (
	"math"

	"fundamental_engine/pkg/models"
)

// Graham computes Benjamin Graham's number: sqrt(22.5 * EPS * BVPS).
// Requires EPS > 0 and BVPS > 0, else the formula is undefined
// (negative radicand) rather than a complex/NaN result.
func Graham(in Input) Estimate {
	if in.EPS <= 0 || in.BVPS <= 0 {
		return undefined("EPS <= 0 or BVPS <= 0")
	}
	value := math.Sqrt(22.5 * in.EPS * in.BVPS)
	return ok(value, confidenceFor(models.ModelGraham, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"eps": in.EPS, "bvps": in.BVPS},
	})
}
