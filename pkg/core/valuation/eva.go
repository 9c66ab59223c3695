package valuation

import "fundamental_engine/pkg/models"

// EVA computes economic-profit valuation: economic profit = NOPAT -
// WACC*invested_capital; enterprise value = invested_capital + sum of
// discounted EVA + terminal EVA value; equity = EV - debt.
func EVA(in Input) Estimate {
	if in.WACC <= in.TerminalGrowth {
		return undefined("WACC <= terminal_growth")
	}
	if in.SharesOutstanding <= 0 {
		return undefined("shares_outstanding <= 0")
	}

	years := in.ForecastYears
	if years <= 0 {
		years = 5
	}

	taxRate := in.TaxRate
	if taxRate <= 0 {
		taxRate = 0.21 // statutory-proxy default
	}
	nopat := in.OperatingIncome * (1 - taxRate)

	var evas []float64
	capital := in.InvestedCapital
	for t := 0; t < years; t++ {
		g := in.TerminalGrowth
		if t < len(in.GrowthSchedule) {
			g = in.GrowthSchedule[t]
		}
		nopat = nopat * (1 + g)
		eva := nopat - in.WACC*capital
		evas = append(evas, eva)
		capital *= (1 + g)
	}

	pvEVA := presentValueOfSeries(evas, in.WACC)
	nextEVA := evas[len(evas)-1] * (1 + in.TerminalGrowth)
	terminal := terminalValueGordonGrowth(nextEVA, in.WACC, in.TerminalGrowth)
	pvTerminal := presentValue(terminal, in.WACC, years)

	enterpriseValue := in.InvestedCapital + pvEVA + pvTerminal
	equityValue := enterpriseValue - in.NetDebt
	perShare := equityValue / in.SharesOutstanding

	return ok(perShare, confidenceFor(models.ModelEVA, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"nopat": nopat, "enterprise_value": enterpriseValue},
	})
}
