// Package trend implements TrendAnalyzer: OLS regression, CAGR, z-score
// anomaly detection, autocorrelation-based seasonality, and moving
// averages with golden/death cross detection. Grounded on
// aristath-sentinel/trader-go/pkg/formulas/stats.go's use of
// gonum.org/v1/gonum/stat for descriptive statistics and cvar.go's use
// of gonum.org/v1/gonum/stat/distuv for distribution-based probability
// computations.
package trend

import (
	"math"
	"time"

	"fundamental_engine/pkg/apperr"
	"fundamental_engine/pkg/models"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Point is one observation in a time series to be trended.
type Point struct {
	T     time.Time
	Value float64
}

// Analyze fits an OLS regression over the series index (not calendar
// time) and derives the full TrendMetrics record. Requires at least 3
// points, else returns apperr.InsufficientData.
func Analyze(companyID, metricName string, asOf time.Time, series []Point) (models.TrendMetrics, error) {
	n := len(series)
	if n < 3 {
		return models.TrendMetrics{}, apperr.New(apperr.InsufficientData, "trend analysis requires at least 3 points")
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range series {
		xs[i] = float64(i)
		ys[i] = p.Value
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	rSquared := stat.RSquared(xs, ys, nil, func(x float64) float64 { return intercept + slope*x })

	residuals := make([]float64, n)
	for i := range xs {
		residuals[i] = ys[i] - (intercept + slope*xs[i])
	}
	residStd := stat.StdDev(residuals, nil)

	pValue := tTestPValue(slope, xs, residuals, n)

	meanY := stat.Mean(ys, nil)
	direction := classifyDirection(slope, meanY, pValue)

	var cagr models.NullableRatio
	start, end := ys[0], ys[n-1]
	if start != 0 && (start > 0) == (end > 0) {
		years := float64(n - 1)
		if years > 0 {
			v := math.Pow(end/start, 1/years) - 1
			cagr = &v
		}
	}

	var anomalies []int
	if residStd > 0 {
		for i, r := range residuals {
			z := r / residStd
			if math.Abs(z) > 2.5 {
				anomalies = append(anomalies, i)
			}
		}
	}

	lag := inferSeasonalLag(n)
	seasonal, ac := false, 0.0
	if lag > 0 && n > lag {
		ac = autocorrelation(ys, lag)
		seasonal = ac > 0.5
	}

	sma := map[int]float64{}
	ema := map[int]float64{}
	for _, w := range []int{3, 5, 50, 200} {
		if n >= w {
			sma[w] = simpleMovingAverage(ys, w)
			ema[w] = exponentialMovingAverage(ys, w)
		}
	}
	golden, death := detectCross(ys, 50, 200)

	return models.TrendMetrics{
		CompanyID:  companyID,
		MetricName: metricName,
		AsOf:       asOf,
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   rSquared,
		PValue:     pValue,
		CAGR:       cagr,
		Direction:  direction,
		SigFlag:    pValue < 0.05,
		AnomalyIndices: anomalies,
		Seasonal:   seasonal,
		SeasonalLag: lag,
		SMA: sma,
		EMA: ema,
		GoldenCross: golden,
		DeathCross:  death,
	}, nil
}

// classifyDirection applies fixed slope thresholds: strong when
// |slope/mean| > 0.15 AND p < 0.05; stable when p >= 0.10 OR |slope|
// below a series-relative 2% floor. The slope is per series step (the
// regression runs over the index) and is not converted to an annual rate.
func classifyDirection(slope, mean, pValue float64) models.Direction {
	relSlope := 0.0
	if mean != 0 {
		relSlope = math.Abs(slope / mean)
	}
	floor := 0.02 * math.Abs(mean)

	if pValue >= 0.10 || math.Abs(slope) < floor {
		return models.Stable
	}
	if relSlope > 0.15 && pValue < 0.05 {
		if slope > 0 {
			return models.StrongImproving
		}
		return models.StrongDeclining
	}
	if slope > 0 {
		return models.Improving
	}
	return models.Declining
}

// tTestPValue computes the two-sided p-value for the OLS slope under a
// t-distribution with n-2 degrees of freedom, via gonum's distuv.StudentsT.
func tTestPValue(slope float64, xs []float64, residuals []float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	dof := float64(n - 2)
	var ssResid float64
	for _, r := range residuals {
		ssResid += r * r
	}
	meanX := stat.Mean(xs, nil)
	var ssX float64
	for _, x := range xs {
		d := x - meanX
		ssX += d * d
	}
	if ssX == 0 || ssResid == 0 {
		return 0
	}
	seSlope := math.Sqrt((ssResid / dof) / ssX)
	tStat := slope / seSlope

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	p := 2 * (1 - dist.CDF(math.Abs(tStat)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

func inferSeasonalLag(n int) int {
	switch {
	case n >= 12:
		return 12
	case n >= 4:
		return 4
	default:
		return 0
	}
}

func autocorrelation(ys []float64, lag int) float64 {
	n := len(ys)
	if n <= lag {
		return 0
	}
	mean := stat.Mean(ys, nil)
	var num, den float64
	for i := 0; i < n; i++ {
		den += (ys[i] - mean) * (ys[i] - mean)
	}
	for i := 0; i < n-lag; i++ {
		num += (ys[i] - mean) * (ys[i+lag] - mean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func simpleMovingAverage(ys []float64, window int) float64 {
	n := len(ys)
	if n < window {
		return 0
	}
	return stat.Mean(ys[n-window:], nil)
}

func exponentialMovingAverage(ys []float64, window int) float64 {
	if len(ys) < window {
		return 0
	}
	alpha := 2.0 / float64(window+1)
	ema := ys[0]
	for _, v := range ys[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema
}

// detectCross flags a golden/death cross: the short SMA crosses the long
// SMA at point n-1, and the cross direction still holds at the
// following point n confirms the reversal.
func detectCross(ys []float64, short, long int) (golden, death bool) {
	n := len(ys)
	if n < long+2 {
		return false, false
	}
	shortAt := func(end int) float64 { return stat.Mean(ys[end-short:end], nil) }
	longAt := func(end int) float64 { return stat.Mean(ys[end-long:end], nil) }

	beforeShort, beforeLong := shortAt(n-2), longAt(n-2)
	crossShort, crossLong := shortAt(n-1), longAt(n-1)
	confirmShort, confirmLong := shortAt(n), longAt(n)

	crossedUp := beforeShort <= beforeLong && crossShort > crossLong
	crossedDown := beforeShort >= beforeLong && crossShort < crossLong

	golden = crossedUp && confirmShort > confirmLong
	death = crossedDown && confirmShort < confirmLong
	return golden, death
}
