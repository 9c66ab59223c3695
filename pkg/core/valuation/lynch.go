package valuation

import "fundamental_engine/pkg/models"

// Lynch implements Peter Lynch's fair-value heuristic: PEG-derived fair
// P/E equals the projected growth rate (as a percentage), fair value =
// fair_PE * EPS. Only the PEG numerator, growth% + dividend_yield%, is
// reported, as the peg_numerator diagnostic and only when
// RevenuePerShare > 0; the current P/E is not an input, so the PEG ratio
// itself is not computed.
func Lynch(in Input) Estimate {
	if in.EPS <= 0 {
		return undefined("EPS <= 0")
	}
	growthPct := in.TerminalGrowth * 100
	if len(in.GrowthSchedule) > 0 {
		growthPct = in.GrowthSchedule[0] * 100
	}
	if growthPct <= 0 {
		return undefined("growth_rate <= 0")
	}

	fairPE := growthPct
	value := fairPE * in.EPS

	diag := map[string]float64{"fair_pe": fairPE, "growth_pct": growthPct}
	if in.RevenuePerShare > 0 {
		// PEG purely for audit purposes; actual current P/E not modeled here
		// since price isn't a valuation input, only an output comparator.
		peg := (growthPct + in.DividendYieldPct)
		diag["peg_numerator"] = peg
	}

	return ok(value, confidenceFor(models.ModelLynch, in.DataCompleteness), models.Diagnostics{Inputs: diag})
}
