package valuation

import "fundamental_engine/pkg/models"

// NCAV is Graham's net current asset value per share: (current_assets -
// total_liabilities) / shares. A negative result is a valid signal of
// distress, not an error.
func NCAV(in Input) Estimate {
	if in.SharesOutstanding <= 0 {
		return undefined("shares_outstanding <= 0")
	}
	value := (in.CurrentAssets - in.TotalLiabilities) / in.SharesOutstanding
	return ok(value, confidenceFor(models.ModelNCAV, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"current_assets": in.CurrentAssets, "total_liabilities": in.TotalLiabilities},
	})
}
