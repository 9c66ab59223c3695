package ratio

import (
	"math"
	"strconv"
)

// BenfordDistribution is the expected frequency for leading digits 1-9.
var BenfordDistribution = map[int]float64{
	1: 0.30103, 2: 0.17609, 3: 0.12494, 4: 0.09691, 5: 0.07918,
	6: 0.06695, 7: 0.05799, 8: 0.05115, 9: 0.04576,
}

// BenfordResult holds the leading-digit distribution analysis used as a
// supplementary risk diagnostic alongside the Beneish/Altman scores.
type BenfordResult struct {
	DigitFrequencies map[int]float64
	TotalCount       int
	MAD              float64
	Level            string // "Low Risk", "Medium Risk", "High Risk", "Insufficient Data"
	Flagged          bool
}

// AnalyzeBenfordsLaw runs first-digit analysis over a set of statement
// line-item magnitudes. Values below 1 in absolute terms are ignored as
// noise. MAD thresholds follow common audit heuristics: <0.010 close
// conformity, 0.010-0.015 marginal, >0.015 nonconforming.
func AnalyzeBenfordsLaw(values []float64) BenfordResult {
	counts := make(map[int]int)
	processed := 0

	for _, v := range values {
		vAbs := math.Abs(v)
		if vAbs < 1.0 {
			continue
		}
		s := strconv.FormatFloat(vAbs, 'f', -1, 64)
		leading := -1
		for _, c := range s {
			if c >= '1' && c <= '9' {
				leading = int(c - '0')
				break
			}
		}
		if leading != -1 {
			counts[leading]++
			processed++
		}
	}

	if processed == 0 {
		return BenfordResult{Level: "Insufficient Data"}
	}

	freqs := make(map[int]float64)
	var sumDiff float64
	for d := 1; d <= 9; d++ {
		actual := float64(counts[d]) / float64(processed)
		freqs[d] = actual
		sumDiff += math.Abs(actual - BenfordDistribution[d])
	}
	mad := sumDiff / 9.0

	level := "Low Risk"
	flagged := false
	switch {
	case mad > 0.015:
		level, flagged = "High Risk", true
	case mad > 0.010:
		level = "Medium Risk"
	}

	return BenfordResult{
		DigitFrequencies: freqs,
		TotalCount:       processed,
		MAD:              mad,
		Level:            level,
		Flagged:          flagged,
	}
}
