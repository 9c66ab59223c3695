package ratio

import "fundamental_engine/pkg/models"

// BeneishResult holds the eight-variable M-score and its inputs.
type BeneishResult struct {
	DSRI, GMI, AQI, SGI, DEPI, SGAI, LVGI, TATA float64
	Score float64
	HighRisk bool
}

// BeneishMScore computes the eight-variable earnings-manipulation score
// from canonical Statements.
func BeneishMScore(cur models.IncomeStatement, curBS models.BalanceSheet, curCF models.CashFlowStatement, prior models.IncomeStatement, priorBS models.BalanceSheet) *BeneishResult {
	dsri := ratioOfRatios(curBS.AccountsReceivable, cur.Revenue, priorBS.AccountsReceivable, prior.Revenue)

	gmCurr := divOrZero(cur.GrossProfit, cur.Revenue)
	gmPrior := divOrZero(prior.GrossProfit, prior.Revenue)
	gmi := divOrZero(gmPrior, gmCurr)

	softAssets := func(bs models.BalanceSheet) float64 {
		if bs.TotalAssets == 0 {
			return 0
		}
		return 1.0 - (bs.TotalCurrentAssets+bs.PPENet)/bs.TotalAssets
	}
	aqi := divOrZero(softAssets(curBS), softAssets(priorBS))

	sgi := divOrZero(cur.Revenue, prior.Revenue)

	depRate := func(is models.IncomeStatement, bs models.BalanceSheet) float64 {
		return divOrZero(is.DepreciationAmort, bs.PPENet+is.DepreciationAmort)
	}
	depi := divOrZero(depRate(prior, priorBS), depRate(cur, curBS))

	sgaRatio := func(is models.IncomeStatement) float64 { return divOrZero(is.SGA, is.Revenue) }
	sgai := divOrZero(sgaRatio(cur), sgaRatio(prior))

	lev := func(is models.IncomeStatement, bs models.BalanceSheet) float64 {
		debt := bs.ShortTermDebt + bs.CurrentPortionLTDebt + bs.LongTermDebt
		return divOrZero(debt+bs.TotalCurrentLiabilities, bs.TotalAssets)
	}
	lvgi := divOrZero(lev(cur, curBS), lev(prior, priorBS))

	tata := divOrZero(cur.NetIncome-curCF.NetCashOperating, curBS.TotalAssets)

	score := -4.84 + 0.920*dsri + 0.528*gmi + 0.404*aqi + 0.892*sgi +
		0.115*depi - 0.172*sgai + 4.679*tata - 0.327*lvgi

	return &BeneishResult{
		DSRI: dsri, GMI: gmi, AQI: aqi, SGI: sgi, DEPI: depi, SGAI: sgai, LVGI: lvgi, TATA: tata,
		Score:    score,
		HighRisk: score > -1.78,
	}
}

func divOrZero(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func ratioOfRatios(aNum, aDen, bNum, bDen float64) float64 {
	return divOrZero(divOrZero(aNum, aDen), divOrZero(bNum, bDen))
}
