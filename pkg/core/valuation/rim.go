package valuation

import "fundamental_engine/pkg/models"

// RIM implements the Ohlson residual-income model: equity value = book
// value + sum of discounted residual income, residual income_t =
// earnings_t - costOfEquity*book_t.
func RIM(in Input) Estimate {
	if in.CostOfEquity <= 0 {
		return undefined("cost_of_equity <= 0")
	}
	if in.SharesOutstanding <= 0 {
		return undefined("shares_outstanding <= 0")
	}

	years := in.ForecastYears
	if years <= 0 {
		years = 5
	}

	bookValue := in.BVPS * in.SharesOutstanding
	earnings := in.NetIncome

	var residuals []float64
	book := bookValue
	for t := 0; t < years; t++ {
		g := in.TerminalGrowth
		if t < len(in.GrowthSchedule) {
			g = in.GrowthSchedule[t]
		}
		earnings = earnings * (1 + g)
		ri := earnings - in.CostOfEquity*book
		residuals = append(residuals, ri)
		book += earnings // clean-surplus assumption: no dividends retained out
	}

	pvResiduals := presentValueOfSeries(residuals, in.CostOfEquity)
	equityValue := bookValue + pvResiduals
	perShare := equityValue / in.SharesOutstanding

	return ok(perShare, confidenceFor(models.ModelRIM, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"book_value": bookValue, "pv_residual_income": pvResiduals},
	})
}
