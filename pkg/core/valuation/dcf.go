package valuation

import "fundamental_engine/pkg/models"

// DCF projects free cash flow for N years (default 5) using the given
// growth schedule, discounts at a single WACC, applies a Gordon-growth
// terminal value, subtracts net debt, and divides by shares.
func DCF(in Input) Estimate {
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

	flows := make([]float64, 0, years)
	fcf := in.FCF0
	for t := 0; t < years; t++ {
		g := in.TerminalGrowth
		if t < len(in.GrowthSchedule) {
			g = in.GrowthSchedule[t]
		}
		fcf = fcf * (1 + g)
		flows = append(flows, fcf)
	}

	pvFlows := presentValueOfSeries(flows, in.WACC)
	nextCF := flows[len(flows)-1] * (1 + in.TerminalGrowth)
	terminal := terminalValueGordonGrowth(nextCF, in.WACC, in.TerminalGrowth)
	pvTerminal := presentValue(terminal, in.WACC, years)

	enterpriseValue := pvFlows + pvTerminal
	equityValue := enterpriseValue - in.NetDebt
	perShare := equityValue / in.SharesOutstanding

	return ok(perShare, confidenceFor(models.ModelDCF, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"enterprise_value": enterpriseValue, "equity_value": equityValue, "terminal_value": terminal},
	})
}
