// Package ratio implements RatioKernel: ~50 financial ratios computed
// deterministically and reproducibly from canonical statements and
// market data. Division-by-zero and sign-changed growth bases return a
// null marker rather than Inf/NaN/panic via a safe-accessor idiom
// (safeDiv, growth) used throughout.
package ratio

import (
	"math"

	"fundamental_engine/pkg/models"
	"fundamental_engine/pkg/money"
)

// safeDiv returns nil (the null ratio marker) instead of Inf/NaN when
// the denominator is zero or either operand is non-finite.
func safeDiv(num, den float64) models.NullableRatio {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) || math.IsInf(num, 0) || math.IsInf(den, 0) {
		return nil
	}
	v := num / den
	return &v
}

func ptr(v float64) models.NullableRatio { return &v }

// growth computes (curr-prior)/|prior|, returning null when the base is
// zero or when curr and prior have opposite signs (an undefined growth
// rate).
func growth(curr, prior float64) models.NullableRatio {
	if prior == 0 {
		return nil
	}
	if (curr > 0) != (prior > 0) && curr != 0 {
		return nil
	}
	v := (curr - prior) / math.Abs(prior)
	return &v
}

// Compute derives the full RatioSet for a company as of a given date.
// It is a pure function of its inputs: identical statements and market
// data always yield a bit-identical RatioSet (testable property 4).
func Compute(asOf models.MarketSnapshot, stmts models.Statements) models.RatioSet {
	cur := stmts.Current
	bs := stmts.CurrentBS
	cf := stmts.CurrentCF

	rs := models.RatioSet{AsOf: asOf.AsOf}

	rs.Liquidity = liquidity(bs)
	rs.Profitability = profitability(cur, bs, stmts.PriorBS)
	rs.Leverage = leverage(cur, bs, cf, stmts.Prior, stmts.PriorBS)
	rs.Efficiency = efficiency(cur, bs, stmts.PriorBS)
	rs.MarketValue = marketValue(cur, bs, cf, asOf)
	rs.Growth = growthRatios(cur, bs, cf, stmts.Prior, stmts.PriorBS, stmts.PriorCF)
	rs.CashFlow = cashFlow(cur, bs, cf, asOf)

	return rs
}

func liquidity(bs models.BalanceSheet) models.LiquidityRatios {
	return models.LiquidityRatios{
		CurrentRatio: safeDiv(bs.TotalCurrentAssets, bs.TotalCurrentLiabilities),
		QuickRatio:   safeDiv(bs.TotalCurrentAssets-bs.Inventory, bs.TotalCurrentLiabilities),
		CashRatio:    safeDiv(bs.Cash+bs.ShortTermInvestments, bs.TotalCurrentLiabilities),
	}
}

func avgOf(curr float64, prior *float64) float64 {
	if prior == nil {
		return curr
	}
	return (curr + *prior) / 2
}

func profitability(is models.IncomeStatement, bs models.BalanceSheet, priorBS *models.BalanceSheet) models.ProfitabilityRatios {
	var priorAssets, priorEquity *float64
	if priorBS != nil {
		a, e := priorBS.TotalAssets, priorBS.TotalEquity
		priorAssets, priorEquity = &a, &e
	}
	avgAssets := avgOf(bs.TotalAssets, priorAssets)
	avgEquity := avgOf(bs.TotalEquity, priorEquity)

	netMargin := safeDiv(is.NetIncome, is.Revenue)
	assetTurnover := safeDiv(is.Revenue, avgAssets)

	var roa, roe models.NullableRatio
	if netMargin != nil && assetTurnover != nil {
		v := *netMargin * *assetTurnover
		roa = &v
		leverage := safeDiv(avgAssets, avgEquity)
		if leverage != nil {
			rv := v * *leverage
			roe = &rv
		}
	}

	// ROIC: NOPAT / invested capital, invested capital = equity + debt - cash
	debt := bs.ShortTermDebt + bs.CurrentPortionLTDebt + bs.LongTermDebt
	investedCapital := avgEquity + debt - bs.Cash
	nopat := is.OperatingIncome * (1 - effectiveTaxRate(is))
	roic := safeDiv(nopat, investedCapital)

	return models.ProfitabilityRatios{
		GrossMargin:     safeDiv(is.GrossProfit, is.Revenue),
		OperatingMargin: safeDiv(is.OperatingIncome, is.Revenue),
		NetMargin:       netMargin,
		ROA:             roa,
		ROE:             roe,
		ROIC:            roic,
	}
}

func effectiveTaxRate(is models.IncomeStatement) float64 {
	if is.IncomeBeforeTax == 0 {
		return 0.21 // statutory-proxy default
	}
	r := math.Abs(is.IncomeTaxExpense / is.IncomeBeforeTax)
	if r < 0 {
		return 0
	}
	if r > 0.4 {
		return 0.4
	}
	return r
}

func leverage(is models.IncomeStatement, bs models.BalanceSheet, cf models.CashFlowStatement, priorIS *models.IncomeStatement, priorBS *models.BalanceSheet) models.LeverageRatios {
	debt := bs.ShortTermDebt + bs.CurrentPortionLTDebt + bs.LongTermDebt
	wc := bs.TotalCurrentAssets - bs.TotalCurrentLiabilities
	mve := bs.TotalEquity // book-value fallback; market cap supplied by caller when available

	z := AltmanZScore(wc, bs.RetainedEarnings, is.OperatingIncome, mve, is.Revenue, bs.TotalAssets, bs.TotalLiabilities)

	var beneish models.NullableRatio
	if priorIS != nil && priorBS != nil {
		if m := BeneishMScore(is, bs, cf, *priorIS, *priorBS); m != nil {
			beneish = ptr(m.Score)
		}
	}

	var benford models.NullableRatio
	if b := AnalyzeBenfordsLaw(lineItemMagnitudes(is, bs, cf)); b.TotalCount > 0 {
		benford = ptr(b.MAD)
	}

	return models.LeverageRatios{
		DebtToEquity:     safeDiv(debt, bs.TotalEquity),
		DebtToAssets:     safeDiv(debt, bs.TotalAssets),
		InterestCoverage: safeDiv(is.OperatingIncome, math.Abs(is.InterestExpense)),
		AltmanZScore:     ptr(z),
		BeneishMScore:    beneish,
		BenfordMAD:       benford,
	}
}

// lineItemMagnitudes flattens one period's statements into the set of
// reported magnitudes Benford's Law is checked against.
func lineItemMagnitudes(is models.IncomeStatement, bs models.BalanceSheet, cf models.CashFlowStatement) []float64 {
	return []float64{
		is.Revenue, is.COGS, is.GrossProfit, is.OperatingIncome, is.NetIncome,
		is.IncomeTaxExpense, is.InterestExpense,
		bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity, bs.TotalCurrentAssets,
		bs.TotalCurrentLiabilities, bs.Cash, bs.Inventory, bs.AccountsReceivable,
		bs.AccountsPayable, bs.RetainedEarnings,
		cf.NetCashOperating, cf.Capex,
	}
}

// AltmanZScore is the bankruptcy-risk composite from working capital,
// retained earnings, EBIT, market value of equity, sales and liabilities.
func AltmanZScore(workingCapital, retainedEarnings, ebit, marketValueEquity, sales, totalAssets, totalLiabilities float64) float64 {
	if totalAssets == 0 {
		return 0
	}
	x1 := workingCapital / totalAssets
	x2 := retainedEarnings / totalAssets
	x3 := ebit / totalAssets
	var x4 float64
	if totalLiabilities != 0 {
		x4 = marketValueEquity / totalLiabilities
	}
	x5 := sales / totalAssets
	return 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5
}

func efficiency(is models.IncomeStatement, bs models.BalanceSheet, priorBS *models.BalanceSheet) models.EfficiencyRatios {
	var priorAssets, priorInv, priorRecv, priorAP *float64
	if priorBS != nil {
		a, i, r, p := priorBS.TotalAssets, priorBS.Inventory, priorBS.AccountsReceivable, priorBS.AccountsPayable
		priorAssets, priorInv, priorRecv, priorAP = &a, &i, &r, &p
	}
	avgAssets := avgOf(bs.TotalAssets, priorAssets)
	avgInv := avgOf(bs.Inventory, priorInv)
	avgRecv := avgOf(bs.AccountsReceivable, priorRecv)
	avgAP := avgOf(bs.AccountsPayable, priorAP)

	invTurnover := safeDiv(-is.COGS, avgInv)
	if invTurnover != nil && *invTurnover < 0 {
		v := -*invTurnover
		invTurnover = &v
	}
	recvTurnover := safeDiv(is.Revenue, avgRecv)

	var dso, dio, dpo models.NullableRatio
	if recvTurnover != nil && *recvTurnover != 0 {
		v := 365 / *recvTurnover
		dso = &v
	}
	if invTurnover != nil && *invTurnover != 0 {
		v := 365 / *invTurnover
		dio = &v
	}
	apTurnover := safeDiv(-is.COGS, avgAP)
	if apTurnover != nil && *apTurnover != 0 {
		v := 365 / math.Abs(*apTurnover)
		dpo = &v
	}

	return models.EfficiencyRatios{
		AssetTurnover:            safeDiv(is.Revenue, avgAssets),
		InventoryTurnover:        invTurnover,
		ReceivablesTurnover:      recvTurnover,
		DaysSalesOutstanding:     dso,
		DaysInventoryOutstanding: dio,
		DaysPayableOutstanding:   dpo,
	}
}

func marketValue(is models.IncomeStatement, bs models.BalanceSheet, cf models.CashFlowStatement, mkt models.MarketSnapshot) models.MarketValueRatios {
	shares := sharesFrom(is, bs)
	eps := safeDiv(is.NetIncome, shares)
	bvps := safeDiv(bs.TotalEquity, shares)
	cfoPerShare := safeDiv(cf.NetCashOperating, shares)
	revPerShare := safeDiv(is.Revenue, shares)

	var pe, pb, ps, pcf, dy models.NullableRatio
	if eps != nil {
		pe = safeDiv(mkt.SharePrice, *eps)
	}
	if bvps != nil {
		pb = safeDiv(mkt.SharePrice, *bvps)
	}
	if revPerShare != nil {
		ps = safeDiv(mkt.SharePrice, *revPerShare)
	}
	if cfoPerShare != nil {
		pcf = safeDiv(mkt.SharePrice, *cfoPerShare)
	}
	if mkt.SharePrice != 0 {
		v := mkt.DividendsPerShare / mkt.SharePrice
		dy = &v
	}

	debt := bs.ShortTermDebt + bs.CurrentPortionLTDebt + bs.LongTermDebt
	netDebt := debt - bs.Cash
	ebitda := is.OperatingIncome + is.DepreciationAmort
	ev := mkt.SharePrice*shares + netDebt
	evEbitda := safeDiv(ev, ebitda)

	return models.MarketValueRatios{
		PE: pe, PB: pb, PS: ps, PCF: pcf,
		EVEBITDA:      evEbitda,
		DividendYield: dy,
	}
}

func sharesFrom(is models.IncomeStatement, bs models.BalanceSheet) float64 {
	if is.EPSDiluted != 0 && is.NetIncome != 0 {
		return is.NetIncome / is.EPSDiluted
	}
	return 0
}

func growthRatios(is models.IncomeStatement, bs models.BalanceSheet, cf models.CashFlowStatement, priorIS *models.IncomeStatement, priorBS *models.BalanceSheet, priorCF *models.CashFlowStatement) models.GrowthRatios {
	var g models.GrowthRatios
	if priorIS == nil {
		return g
	}
	g.RevenueCAGR = growth(is.Revenue, priorIS.Revenue)
	g.EPSCAGR = growth(is.EPSDiluted, priorIS.EPSDiluted)
	g.RevenueYoY = g.RevenueCAGR

	if priorBS != nil {
		g.BookValueCAGR = growth(bs.TotalEquity, priorBS.TotalEquity)
	}
	if priorCF != nil {
		currFCF := cf.NetCashOperating - cf.Capex
		priorFCF := priorCF.NetCashOperating - priorCF.Capex
		g.FCFCAGR = growth(currFCF, priorFCF)
	}
	return g
}

func cashFlow(is models.IncomeStatement, bs models.BalanceSheet, cf models.CashFlowStatement, mkt models.MarketSnapshot) models.CashFlowRatios {
	fcf := cf.NetCashOperating - cf.Capex
	shares := sharesFrom(is, bs)
	marketCap := mkt.SharePrice * shares
	fcfYield := safeDiv(fcf, marketCap)
	quality := safeDiv(cf.NetCashOperating, is.NetIncome)

	return models.CashFlowRatios{
		FCF:            ptr(fcf),
		FCFYield:       fcfYield,
		CFOToNIQuality: quality,
	}
}

// RoundForStorage rounds every populated ratio to the half-to-even
// storage precision required at the persistence boundary.
func RoundForStorage(r *float64) models.NullableRatio {
	if r == nil {
		return nil
	}
	v := money.ToFloat(money.FromFloat(*r))
	return &v
}
