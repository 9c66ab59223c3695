package ratio

import (
	"testing"
	"time"

	"fundamental_engine/pkg/models"
)

func sampleStatements() models.Statements {
	priorIS := models.IncomeStatement{
		Revenue: 90000, COGS: -54000, GrossProfit: 36000, OperatingIncome: 18000,
		InterestExpense: -1000, IncomeBeforeTax: 17000, IncomeTaxExpense: -3570,
		NetIncome: 13430, EPSDiluted: 1.30, DepreciationAmort: 3000,
	}
	priorBS := models.BalanceSheet{
		Cash: 10000, AccountsReceivable: 8000, Inventory: 9000, TotalCurrentAssets: 27000,
		TotalAssets: 80000, AccountsPayable: 6000, TotalCurrentLiabilities: 15000,
		LongTermDebt: 20000, TotalLiabilities: 35000, RetainedEarnings: 20000, TotalEquity: 45000,
	}
	priorCF := models.CashFlowStatement{NetCashOperating: 16000, Capex: -5000}

	cur := models.IncomeStatement{
		Revenue: 100000, COGS: -60000, GrossProfit: 40000, OperatingIncome: 20000,
		InterestExpense: -1200, IncomeBeforeTax: 18800, IncomeTaxExpense: -3948,
		NetIncome: 14852, EPSDiluted: 1.40, DepreciationAmort: 3200,
	}
	curBS := models.BalanceSheet{
		Cash: 12000, AccountsReceivable: 9000, Inventory: 9500, TotalCurrentAssets: 30500,
		TotalAssets: 85000, AccountsPayable: 6500, TotalCurrentLiabilities: 16000,
		LongTermDebt: 19000, TotalLiabilities: 35000, RetainedEarnings: 24852, TotalEquity: 50000,
	}
	curCF := models.CashFlowStatement{NetCashOperating: 17500, Capex: -5500}

	return models.Statements{
		Current: cur, Prior: &priorIS,
		CurrentBS: curBS, PriorBS: &priorBS,
		CurrentCF: curCF, PriorCF: &priorCF,
	}
}

func TestCompute_IsPureAndDeterministic(t *testing.T) {
	mkt := models.MarketSnapshot{AsOf: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), SharePrice: 42}
	stmts := sampleStatements()

	a := Compute(mkt, stmts)
	b := Compute(mkt, stmts)

	if *a.Liquidity.CurrentRatio != *b.Liquidity.CurrentRatio {
		t.Errorf("expected identical statements to yield identical ratios")
	}
	if *a.Profitability.NetMargin != *b.Profitability.NetMargin {
		t.Errorf("expected identical statements to yield identical ratios")
	}
}

func TestCompute_LiquidityRatios(t *testing.T) {
	mkt := models.MarketSnapshot{SharePrice: 42}
	rs := Compute(mkt, sampleStatements())

	if rs.Liquidity.CurrentRatio == nil {
		t.Fatalf("expected a defined current ratio")
	}
	want := 30500.0 / 16000.0
	if diff := *rs.Liquidity.CurrentRatio - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected current ratio %v, got %v", want, *rs.Liquidity.CurrentRatio)
	}
}

func TestSafeDiv_ZeroDenominatorReturnsNull(t *testing.T) {
	if safeDiv(10, 0) != nil {
		t.Errorf("expected nil for division by zero")
	}
}

func TestGrowth_SignChangeReturnsNull(t *testing.T) {
	if growth(5, -5) != nil {
		t.Errorf("expected nil when sign flips across the growth base")
	}
	if growth(-5, -5) == nil {
		t.Errorf("expected a defined growth rate when signs match")
	}
}

func TestGrowth_ZeroBaseReturnsNull(t *testing.T) {
	if growth(5, 0) != nil {
		t.Errorf("expected nil for a zero growth base")
	}
}

func TestAltmanZScore_ZeroAssetsReturnsZero(t *testing.T) {
	if z := AltmanZScore(1, 1, 1, 1, 1, 0, 1); z != 0 {
		t.Errorf("expected 0 for zero total assets, got %v", z)
	}
}

func TestAltmanZScore_HealthyCompanyScoresAboveSafeThreshold(t *testing.T) {
	z := AltmanZScore(14500, 24852, 20000, 50000, 100000, 85000, 35000)
	if z < 3 {
		t.Errorf("expected a financially healthy profile to score above the 3.0 safe threshold, got %v", z)
	}
}

func TestBeneishMScore_RequiresBothPriorStatements(t *testing.T) {
	stmts := sampleStatements()
	result := BeneishMScore(stmts.Current, stmts.CurrentBS, stmts.CurrentCF, *stmts.Prior, *stmts.PriorBS)
	if result == nil {
		t.Fatalf("expected a defined Beneish M-score with both prior statements present")
	}
}

func TestAnalyzeBenfordsLaw_NaturalDataIsLowMAD(t *testing.T) {
	values := []float64{100, 110, 123, 145, 198, 212, 234, 256, 289, 310, 345, 389, 421, 456, 489}
	result := AnalyzeBenfordsLaw(values)
	if result.MAD < 0 {
		t.Errorf("expected a non-negative MAD, got %v", result.MAD)
	}
}

func TestRoundForStorage_NilPassesThrough(t *testing.T) {
	if RoundForStorage(nil) != nil {
		t.Errorf("expected nil to pass through unchanged")
	}
}
