package scenario

import (
	"testing"
	"time"

	"fundamental_engine/pkg/core/valuation"
	"fundamental_engine/pkg/models"
)

func TestRun_ProducesTwentyFourRows(t *testing.T) {
	base := valuation.Input{
		EPS: 6.5, BVPS: 28.0, SharesOutstanding: 1e9,
		Revenue: 100000, NetIncome: 15000, OperatingIncome: 20000,
		WACC: 0.09, CostOfEquity: 0.09, TerminalGrowth: 0.025,
		GrowthSchedule: []float64{0.06, 0.05, 0.04, 0.03, 0.03},
		FCF0: 20000, InvestedCapital: 80000, NetDebt: 10000,
		CurrentAssets: 40000, TotalLiabilities: 60000,
		RevenuePerShare: 0.0001, OperatingCFPerShare: 0.00002,
		IndustryPS: 2.0, IndustryPCF: 10.0, DataCompleteness: 1,
	}

	results := Run("acme", time.Now(), base)
	if len(results) != 8 {
		t.Fatalf("expected 8 models, got %d", len(results))
	}
	total := 0
	for _, r := range results {
		total += len(r.Rows)
	}
	if total != 24 {
		t.Errorf("expected 24 rows total, got %d", total)
	}
}

func TestRun_DCFScenarioMonotonicity(t *testing.T) {
	base := valuation.Input{
		WACC: 0.09, CostOfEquity: 0.09, TerminalGrowth: 0.025,
		GrowthSchedule: []float64{0.06, 0.05, 0.04, 0.03, 0.03},
		FCF0: 20000, NetDebt: 10000, SharesOutstanding: 1e9,
		DataCompleteness: 1,
	}
	results := Run("acme", time.Now(), base)
	dcf := results[models.ModelDCF]
	bull, baseVal, bear := dcf.Rows[0].FairValue, dcf.Rows[1].FairValue, dcf.Rows[2].FairValue
	if bull == nil || baseVal == nil || bear == nil {
		t.Fatalf("expected all three DCF scenarios to be defined")
	}
	if !(*bull >= *baseVal && *baseVal >= *bear) {
		t.Errorf("expected bull >= base >= bear, got %v %v %v", *bull, *baseVal, *bear)
	}
}
