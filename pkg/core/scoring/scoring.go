// Package scoring implements Scorer: five dimension scores rolled into a
// composite 0-100 fundamental score with a letter rating, a bagged
// stump ensemble standing in for the dimension-weight optimiser, and
// ranking with a stable ticker tie-break. Grounded on the ratio-to-score
// mapping idiom in y437li-agentic_valuation/pkg/core/calc/verifier.go
// (clamped, direction-aware scoring of a metric against a peer
// benchmark) and on aristath-sentinel's ensemble-of-weak-learners
// pattern for the ML weight optimiser, since the pack carries no
// dedicated random-forest library.
package scoring

import (
	"math"
	"sort"
	"time"

	"fundamental_engine/pkg/models"
)

// Inputs is the set of raw metrics one dimension scoring pass needs for
// a single company, already resolved against industry benchmarks.
type Inputs struct {
	PE, PB, PEG, EVEBITDA               models.NullableRatio
	IndustryPE, IndustryPB, IndustryPEG float64
	IndustryEVEBITDA                    float64

	ROE, ROA, NetMargin, OperatingMargin models.NullableRatio
	IndustryROE90, IndustryROA90         float64
	IndustryNetMargin90                  float64
	IndustryOperatingMargin90            float64

	RevenueCAGR, EPSCAGR, BookValueCAGR models.NullableRatio

	CurrentRatio, QuickRatio, DebtToEquity, InterestCoverage models.NullableRatio

	AltmanZ    models.NullableRatio
	Beta       *float64
	Volatility *float64
}

// DefaultWeights holds the default dimension weights.
func DefaultWeights() map[models.Dimension]float64 {
	return map[models.Dimension]float64{
		models.DimValuation:     0.25,
		models.DimProfitability: 0.20,
		models.DimGrowth:        0.20,
		models.DimHealth:        0.20,
		models.DimRisk:          0.15,
	}
}

func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// closeToMedian maps "how close a multiple is to its industry median" to
// a 0-100 score: at the median it scores 100, decaying as the relative
// gap widens, floored at 0 once the gap exceeds 100%.
func closeToMedian(value, median float64) float64 {
	if median == 0 {
		return 50
	}
	gap := math.Abs(value-median) / math.Abs(median)
	return clamp01to100(100 * (1 - math.Min(gap, 1)))
}

// ScoreValuation scores P/E, P/B, PEG, EV/EBITDA against industry
// medians; closer to the median scores higher.
func ScoreValuation(in Inputs) models.DimensionScore {
	sub := map[string]float64{}
	var parts []float64
	addRatio := func(name string, v models.NullableRatio, median float64) {
		if v == nil {
			return
		}
		s := closeToMedian(*v, median)
		sub[name] = s
		parts = append(parts, s)
	}
	addRatio("pe", in.PE, in.IndustryPE)
	addRatio("pb", in.PB, in.IndustryPB)
	addRatio("peg", in.PEG, in.IndustryPEG)
	addRatio("ev_ebitda", in.EVEBITDA, in.IndustryEVEBITDA)

	return models.DimensionScore{Dimension: models.DimValuation, Value: meanOrNeutral(parts), SubMetrics: sub}
}

// scaleToPercentile90 maps a metric to 0-100 linearly up to the
// industry 90th percentile, capping higher values at 100.
func scaleToPercentile90(value, p90 float64) float64 {
	if p90 <= 0 {
		return 50
	}
	return clamp01to100(100 * value / p90)
}

// ScoreProfitability scores ROE, ROA, net margin, operating margin,
// higher is better, capped at the industry 90th percentile.
func ScoreProfitability(in Inputs) models.DimensionScore {
	sub := map[string]float64{}
	var parts []float64
	add := func(name string, v models.NullableRatio, p90 float64) {
		if v == nil {
			return
		}
		s := scaleToPercentile90(*v, p90)
		sub[name] = s
		parts = append(parts, s)
	}
	add("roe", in.ROE, in.IndustryROE90)
	add("roa", in.ROA, in.IndustryROA90)
	add("net_margin", in.NetMargin, in.IndustryNetMargin90)
	add("operating_margin", in.OperatingMargin, in.IndustryOperatingMargin90)

	return models.DimensionScore{Dimension: models.DimProfitability, Value: meanOrNeutral(parts), SubMetrics: sub}
}

// logisticMap maps a signed growth rate to 0-100 via a logistic curve
// centred at 0% growth (score 50), steepness tuned so +/-20% growth
// approaches the 0/100 tails.
func logisticMap(cagr float64) float64 {
	return clamp01to100(100 / (1 + math.Exp(-cagr/0.08)))
}

// ScoreGrowth scores revenue/earnings/book-value CAGR via a signed
// logistic map.
func ScoreGrowth(in Inputs) models.DimensionScore {
	sub := map[string]float64{}
	var parts []float64
	add := func(name string, v models.NullableRatio) {
		if v == nil {
			return
		}
		s := logisticMap(*v)
		sub[name] = s
		parts = append(parts, s)
	}
	add("revenue_cagr", in.RevenueCAGR)
	add("eps_cagr", in.EPSCAGR)
	add("book_value_cagr", in.BookValueCAGR)

	return models.DimensionScore{Dimension: models.DimGrowth, Value: meanOrNeutral(parts), SubMetrics: sub}
}

// ScoreHealth scores current ratio, quick ratio, D/E (inverted), and
// interest coverage.
func ScoreHealth(in Inputs) models.DimensionScore {
	sub := map[string]float64{}
	var parts []float64
	if in.CurrentRatio != nil {
		s := clamp01to100(50 * *in.CurrentRatio) // 2.0x -> 100
		sub["current_ratio"] = s
		parts = append(parts, s)
	}
	if in.QuickRatio != nil {
		s := clamp01to100(66.7 * *in.QuickRatio) // 1.5x -> 100
		sub["quick_ratio"] = s
		parts = append(parts, s)
	}
	if in.DebtToEquity != nil {
		s := clamp01to100(100 * (1 - math.Min(*in.DebtToEquity/2, 1))) // 0x -> 100, >=2x -> 0
		sub["debt_to_equity"] = s
		parts = append(parts, s)
	}
	if in.InterestCoverage != nil {
		s := clamp01to100(100 * math.Min(*in.InterestCoverage/10, 1)) // >=10x -> 100
		sub["interest_coverage"] = s
		parts = append(parts, s)
	}
	return models.DimensionScore{Dimension: models.DimHealth, Value: meanOrNeutral(parts), SubMetrics: sub}
}

// ScoreRisk scores Altman Z-score (Z>=3 -> 100, Z<1.81 -> 0 linearly),
// beta inverted, and volatility inverted.
func ScoreRisk(in Inputs) models.DimensionScore {
	sub := map[string]float64{}
	var parts []float64
	if in.AltmanZ != nil {
		z := *in.AltmanZ
		var s float64
		switch {
		case z >= 3:
			s = 100
		case z < 1.81:
			s = 0
		default:
			s = 100 * (z - 1.81) / (3 - 1.81)
		}
		s = clamp01to100(s)
		sub["altman_z"] = s
		parts = append(parts, s)
	}
	if in.Beta != nil {
		s := clamp01to100(100 * (1 - math.Min(*in.Beta/2, 1))) // beta 0 -> 100, beta>=2 -> 0
		sub["beta"] = s
		parts = append(parts, s)
	}
	if in.Volatility != nil {
		s := clamp01to100(100 * (1 - math.Min(*in.Volatility/0.6, 1))) // 60% annualised vol -> 0
		sub["volatility"] = s
		parts = append(parts, s)
	}
	return models.DimensionScore{Dimension: models.DimRisk, Value: meanOrNeutral(parts), SubMetrics: sub}
}

func meanOrNeutral(parts []float64) float64 {
	if len(parts) == 0 {
		return 50
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

// Composite rolls the five dimension scores into a 0-100 composite and
// maps it to a letter rating band.
func Composite(companyID string, asOf time.Time, dims map[models.Dimension]models.DimensionScore, weights map[models.Dimension]float64, source models.ScoreSource, mlConfidence float64) models.CompositeScore {
	var composite float64
	scores := map[models.Dimension]float64{}
	for d, score := range dims {
		scores[d] = score.Value
		composite += weights[d] * score.Value
	}
	return models.CompositeScore{
		CompanyID:        companyID,
		AsOf:             asOf,
		Composite:        composite,
		Rating:           ratingFor(composite),
		DimensionWeights: weights,
		DimensionScores:  scores,
		Source:           source,
		MLConfidence:     mlConfidence,
	}
}

func ratingFor(composite float64) models.Rating {
	switch {
	case composite >= 90:
		return models.RatingAPlus
	case composite >= 80:
		return models.RatingA
	case composite >= 70:
		return models.RatingBPlus
	case composite >= 60:
		return models.RatingB
	case composite >= 50:
		return models.RatingCPlus
	case composite >= 40:
		return models.RatingC
	case composite >= 30:
		return models.RatingD
	default:
		return models.RatingF
	}
}

// RankEntry is one row of a ranking page.
type RankEntry struct {
	Ticker    string
	Composite float64
	Rating    models.Rating
}

// Rank sorts scores descending by composite, with a stable ascending
// ticker tie-break, filtering out anything below minScore.
func Rank(scores map[string]models.CompositeScore, minScore *float64) []RankEntry {
	entries := make([]RankEntry, 0, len(scores))
	for ticker, s := range scores {
		if minScore != nil && s.Composite < *minScore {
			continue
		}
		entries = append(entries, RankEntry{Ticker: ticker, Composite: s.Composite, Rating: s.Rating})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Composite != entries[j].Composite {
			return entries[i].Composite > entries[j].Composite
		}
		return entries[i].Ticker < entries[j].Ticker
	})
	return entries
}
