package valuation

// DeriveDiscountRates resolves the WACC and cost-of-equity an Input
// needs for DCF/EVA (WACC) and RIM (cost of equity) from CAPM inputs and
// target leverage, via CalculateWACC, instead of requiring the caller to
// supply pre-computed discount rates directly.
func DeriveDiscountRates(unleveredBeta, riskFreeRate, marketRiskPremium, preTaxCostOfDebt, targetDebtToEquity, taxRate float64) (wacc, costOfEquity float64) {
	result := CalculateWACC(WACCInput{
		UnleveredBeta:     unleveredBeta,
		RiskFreeRate:      riskFreeRate,
		MarketRiskPremium: marketRiskPremium,
		PreTaxCostOfDebt:  preTaxCostOfDebt,
		TaxRate:           taxRate,
		DebtToEquityRatio: targetDebtToEquity,
	})
	return result.WACC, result.CostOfEquity
}

// ResolveDiscountRates fills in WACC and CostOfEquity from the Input's
// CAPM fields when the caller has left WACC at zero and supplied an
// unlevered beta, so DCF/EVA/RIM see a derived discount rate without
// every caller having to invoke DeriveDiscountRates itself.
func (in Input) ResolveDiscountRates() Input {
	if in.WACC != 0 || in.UnleveredBeta == 0 {
		return in
	}
	wacc, costOfEquity := DeriveDiscountRates(
		in.UnleveredBeta, in.RiskFreeRate, in.MarketRiskPremium,
		in.PreTaxCostOfDebt, in.TargetDebtToEquity, in.TaxRate,
	)
	in.WACC = wacc
	in.CostOfEquity = costOfEquity
	return in
}
