package valuation

import "fundamental_engine/pkg/models"

// PriceToSales values a company at the industry-median P/S multiple
// times revenue per share.
func PriceToSales(in Input) Estimate {
	if in.RevenuePerShare <= 0 {
		return undefined("revenue_per_share <= 0")
	}
	if in.IndustryPS <= 0 {
		return undefined("industry_ps unavailable")
	}
	value := in.IndustryPS * in.RevenuePerShare
	diagInputs := map[string]float64{"industry_ps": in.IndustryPS, "revenue_per_share": in.RevenuePerShare}
	if len(in.Peers) > 0 {
		band := PeerRange(in.Revenue, 0, in.NetIncome, in.SharesOutstanding, in.Peers)
		diagInputs["peer_implied_ev_revenue_low"] = band.ImpliedEV_Revenue[0]
		diagInputs["peer_implied_ev_revenue_high"] = band.ImpliedEV_Revenue[1]
	}
	return ok(value, confidenceFor(models.ModelPS, in.DataCompleteness), models.Diagnostics{
		Inputs: diagInputs,
	})
}

// PriceToCashFlow values a company at the industry-median P/CF multiple
// times operating cash flow per share.
func PriceToCashFlow(in Input) Estimate {
	if in.OperatingCFPerShare <= 0 {
		return undefined("operating_cf_per_share <= 0")
	}
	if in.IndustryPCF <= 0 {
		return undefined("industry_pcf unavailable")
	}
	value := in.IndustryPCF * in.OperatingCFPerShare
	return ok(value, confidenceFor(models.ModelPCF, in.DataCompleteness), models.Diagnostics{
		Inputs: map[string]float64{"industry_pcf": in.IndustryPCF, "operating_cf_per_share": in.OperatingCFPerShare},
	})
}

// PeerRange reuses the comparable-companies percentile-range analysis
// (CalculateComps) to produce supplementary [low, high] peer-implied
// bands. PriceToSales attaches the EV/Revenue band (an implied enterprise
// value, not a per-share price) to its diagnostics when a peer set is
// available; PriceToCashFlow does not use it. It is a diagnostic only;
// it never becomes the model's fair_value.
func PeerRange(revenue, ebitda, netIncome, shares float64, peers []PeerComparable) RelativeValuationResult {
	return CalculateComps(MetricInput{Revenue: revenue, EBITDA: ebitda, NetIncome: netIncome, SharesOut: shares}, peers)
}
