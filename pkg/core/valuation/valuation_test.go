package valuation

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGraham_UndefinedForNegativeEPS(t *testing.T) {
	in := Input{EPS: -1.0, BVPS: 10.0, DataCompleteness: 1}
	est := Graham(in)
	if est.FairValue != nil {
		t.Fatalf("expected nil fair value, got %v", *est.FairValue)
	}
	if est.Diagnostics.Reason == "" {
		t.Fatalf("expected a diagnostics reason")
	}
}

func TestGraham_ComputesSqrtFormula(t *testing.T) {
	in := Input{EPS: 2.0, BVPS: 20.0, DataCompleteness: 1}
	est := Graham(in)
	if est.FairValue == nil {
		t.Fatalf("expected a fair value")
	}
	want := math.Sqrt(22.5 * 2.0 * 20.0)
	if !almostEqual(*est.FairValue, want, 1e-9) {
		t.Errorf("got %v want %v", *est.FairValue, want)
	}
}

func TestDCF_UndefinedWhenWACCBelowGrowth(t *testing.T) {
	in := Input{WACC: 0.04, TerminalGrowth: 0.05, SharesOutstanding: 1000, FCF0: 100}
	est := DCF(in)
	if est.FairValue != nil {
		t.Fatalf("expected nil fair value when WACC <= terminal growth")
	}
}

func TestDCF_MonotonicInGrowthAndDiscountRate(t *testing.T) {
	base := Input{
		WACC: 0.09, TerminalGrowth: 0.025, SharesOutstanding: 1e9,
		FCF0: 20000, GrowthSchedule: []float64{0.06, 0.05, 0.04, 0.03, 0.03},
		NetDebt: 10000, DataCompleteness: 1,
	}
	bull := base
	bull.GrowthSchedule = append([]float64(nil), base.GrowthSchedule...)
	bull.WACC -= 0.02
	for i := range bull.GrowthSchedule {
		bull.GrowthSchedule[i] += 0.03
	}

	bear := base
	bear.GrowthSchedule = append([]float64(nil), base.GrowthSchedule...)
	bear.WACC += 0.03
	for i := range bear.GrowthSchedule {
		bear.GrowthSchedule[i] -= 0.02
	}

	vBase := DCF(base)
	vBull := DCF(bull)
	vBear := DCF(bear)

	if vBase.FairValue == nil || vBull.FairValue == nil || vBear.FairValue == nil {
		t.Fatalf("expected all three scenarios to produce a value")
	}
	if !(*vBull.FairValue >= *vBase.FairValue && *vBase.FairValue >= *vBear.FairValue) {
		t.Errorf("expected bull >= base >= bear, got bull=%v base=%v bear=%v", *vBull.FairValue, *vBase.FairValue, *vBear.FairValue)
	}
}

func TestNCAV_AllowsNegativeResult(t *testing.T) {
	in := Input{CurrentAssets: 100, TotalLiabilities: 500, SharesOutstanding: 10}
	est := NCAV(in)
	if est.FairValue == nil {
		t.Fatalf("expected a value even when negative")
	}
	if *est.FairValue >= 0 {
		t.Errorf("expected a negative NCAV per share, got %v", *est.FairValue)
	}
}

func TestPriceToSales_UndefinedWithoutIndustryMultiple(t *testing.T) {
	in := Input{RevenuePerShare: 10}
	est := PriceToSales(in)
	if est.FairValue != nil {
		t.Fatalf("expected nil without an industry P/S multiple")
	}
}
