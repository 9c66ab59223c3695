package valuation

import "testing"

func TestDeriveDiscountRates_HigherLeverageRaisesWACCComponents(t *testing.T) {
	waccLow, keLow := DeriveDiscountRates(1.0, 0.04, 0.05, 0.06, 0.2, 0.21)
	waccHigh, keHigh := DeriveDiscountRates(1.0, 0.04, 0.05, 0.06, 1.5, 0.21)

	if keHigh <= keLow {
		t.Errorf("expected higher leverage to re-lever beta and raise cost of equity, got %v vs %v", keHigh, keLow)
	}
	if waccHigh == 0 || waccLow == 0 {
		t.Errorf("expected non-zero WACC in both cases")
	}
}

func TestDeriveDiscountRates_ZeroLeverageEqualsUnleveredCAPM(t *testing.T) {
	wacc, ke := DeriveDiscountRates(1.2, 0.03, 0.06, 0.05, 0, 0.25)
	want := 0.03 + 1.2*0.06
	if !almostEqual(ke, want, 1e-9) {
		t.Errorf("expected cost of equity %v, got %v", want, ke)
	}
	if !almostEqual(wacc, ke, 1e-9) {
		t.Errorf("expected WACC to equal cost of equity at zero leverage, got %v vs %v", wacc, ke)
	}
}

func TestResolveDiscountRates_DerivesFromCAPMFieldsWhenWACCUnset(t *testing.T) {
	in := Input{
		UnleveredBeta: 1.1, RiskFreeRate: 0.04, MarketRiskPremium: 0.055,
		PreTaxCostOfDebt: 0.06, TargetDebtToEquity: 0.3, TaxRate: 0.21,
	}
	out := in.ResolveDiscountRates()

	wantWACC, wantKe := DeriveDiscountRates(1.1, 0.04, 0.055, 0.06, 0.3, 0.21)
	if !almostEqual(out.WACC, wantWACC, 1e-9) {
		t.Errorf("expected WACC %v, got %v", wantWACC, out.WACC)
	}
	if !almostEqual(out.CostOfEquity, wantKe, 1e-9) {
		t.Errorf("expected cost of equity %v, got %v", wantKe, out.CostOfEquity)
	}
}

func TestResolveDiscountRates_LeavesExplicitWACCUntouched(t *testing.T) {
	in := Input{WACC: 0.08, CostOfEquity: 0.09, UnleveredBeta: 1.5, RiskFreeRate: 0.04, MarketRiskPremium: 0.06}
	out := in.ResolveDiscountRates()

	if out.WACC != 0.08 || out.CostOfEquity != 0.09 {
		t.Errorf("expected an explicitly supplied WACC/CostOfEquity to pass through unchanged, got %v / %v", out.WACC, out.CostOfEquity)
	}
}

func TestResolveDiscountRates_NoOpWithoutUnleveredBeta(t *testing.T) {
	in := Input{RiskFreeRate: 0.04, MarketRiskPremium: 0.06}
	out := in.ResolveDiscountRates()

	if out.WACC != 0 || out.CostOfEquity != 0 {
		t.Errorf("expected WACC/CostOfEquity to stay zero without an UnleveredBeta, got %v / %v", out.WACC, out.CostOfEquity)
	}
}
