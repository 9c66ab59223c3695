package scoring

import (
	"math"

	"fundamental_engine/pkg/apperr"
	"fundamental_engine/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// DimensionSample is one (dimension_scores -> forward_return) training
// pair for the weight optimiser.
type DimensionSample struct {
	Scores        map[models.Dimension]float64
	ForwardReturn float64
}

// MinTrainingSamples is the floor below which default weights are used.
const MinTrainingSamples = 100

var dimensionOrder = [5]models.Dimension{
	models.DimValuation, models.DimProfitability, models.DimGrowth, models.DimHealth, models.DimRisk,
}

// stump is a single-feature decision stump: predicts above/below a
// split threshold on one dimension's score.
type stump struct {
	dimIdx    int
	threshold float64
	below     float64
	above     float64
}

func (s stump) predict(x [5]float64) float64 {
	if x[s.dimIdx] < s.threshold {
		return s.below
	}
	return s.above
}

// fitStump finds the best single-dimension split (by squared error) for
// one dimension index.
func fitStump(dimIdx int, xs [][5]float64, ys []float64) (stump, float64) {
	best := stump{dimIdx: dimIdx}
	bestErr := math.Inf(1)

	thresholds := uniqueSorted(xs, dimIdx)
	for _, t := range thresholds {
		var belowSum, aboveSum float64
		var belowN, aboveN int
		for i, x := range xs {
			if x[dimIdx] < t {
				belowSum += ys[i]
				belowN++
			} else {
				aboveSum += ys[i]
				aboveN++
			}
		}
		if belowN == 0 || aboveN == 0 {
			continue
		}
		below := belowSum / float64(belowN)
		above := aboveSum / float64(aboveN)

		var sse float64
		for i, x := range xs {
			pred := below
			if x[dimIdx] >= t {
				pred = above
			}
			d := ys[i] - pred
			sse += d * d
		}
		if sse < bestErr {
			bestErr = sse
			best = stump{dimIdx: dimIdx, threshold: t, below: below, above: above}
		}
	}
	return best, bestErr
}

func uniqueSorted(xs [][5]float64, dimIdx int) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, x := range xs {
		v := x[dimIdx]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// ensemble is a bag of stumps, one fitted per bootstrap resample, whose
// per-dimension squared-error reduction (feature importance) normalises
// to the published dimension weights.
type ensemble struct {
	stumps []stump
}

func (e ensemble) predict(x [5]float64) float64 {
	var sum float64
	for _, s := range e.stumps {
		sum += s.predict(x)
	}
	return sum / float64(len(e.stumps))
}

// bootstrapResample draws len(xs) indices with replacement using a
// simple linear-congruential stream seeded from the seed argument, so
// repeated runs with the same seed are reproducible.
func bootstrapResample(n int, seed uint64) []int {
	out := make([]int, n)
	state := seed + 0x9E3779B97F4A7C15
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		out[i] = int(state>>33) % n
		if out[i] < 0 {
			out[i] += n
		}
	}
	return out
}

// FitDimensionWeights trains a bagged ensemble of per-dimension decision
// stumps on (dimension_scores -> forward_return) pairs, derives each
// dimension's importance from its aggregate squared-error reduction
// across the bag, normalises to sum 1, and reports R²/CV-std so
// ml_confidence can be computed with the harmonised formula. Below
// MinTrainingSamples, the caller must fall back to DefaultWeights.
func FitDimensionWeights(samples []DimensionSample, numTrees int, seed uint64) (map[models.Dimension]float64, float64, float64, error) {
	if len(samples) < MinTrainingSamples {
		return nil, 0, 0, apperr.New(apperr.InsufficientData, "fewer than MinTrainingSamples dimension samples")
	}
	if numTrees <= 0 {
		numTrees = 50
	}

	xs := make([][5]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		for j, d := range dimensionOrder {
			xs[i][j] = s.Scores[d]
		}
		ys[i] = s.ForwardReturn
	}

	importances := [5]float64{}
	var stumps []stump

	for tree := 0; tree < numTrees; tree++ {
		idx := bootstrapResample(len(xs), seed+uint64(tree))
		bxs := make([][5]float64, len(idx))
		bys := make([]float64, len(idx))
		for i, id := range idx {
			bxs[i] = xs[id]
			bys[i] = ys[id]
		}

		var treeVariance float64
		for _, y := range bys {
			treeVariance += y * y
		}

		bestDim := 0
		var bestStump stump
		bestErr := math.Inf(1)
		for d := 0; d < 5; d++ {
			s, sse := fitStump(d, bxs, bys)
			if sse < bestErr {
				bestErr = sse
				bestStump = s
				bestDim = d
			}
		}
		if math.IsInf(bestErr, 1) {
			continue
		}
		stumps = append(stumps, bestStump)
		importances[bestDim] += math.Max(0, treeVariance-bestErr)
	}

	var total float64
	for _, v := range importances {
		total += v
	}
	weights := map[models.Dimension]float64{}
	if total == 0 {
		return DefaultWeights(), 0, 0, nil
	}
	for i, d := range dimensionOrder {
		weights[d] = importances[i] / total
	}

	ens := ensemble{stumps: stumps}
	preds := make([]float64, len(xs))
	for i, x := range xs {
		preds[i] = ens.predict(x)
	}
	r2 := stat.RSquared(preds, ys, nil, func(x float64) float64 { return x })

	cvStd := crossValidateStd(xs, ys, numTrees, seed)

	return weights, r2, cvStd, nil
}

func crossValidateStd(xs [][5]float64, ys []float64, numTrees int, seed uint64) float64 {
	const folds = 5
	if len(xs) < folds {
		return 0
	}
	foldSize := len(xs) / folds
	errs := make([]float64, 0, folds)
	for f := 0; f < folds; f++ {
		start, end := f*foldSize, (f+1)*foldSize
		if f == folds-1 {
			end = len(xs)
		}
		testX, testY := xs[start:end], ys[start:end]
		var trainX [][5]float64
		var trainY []float64
		trainX = append(trainX, xs[:start]...)
		trainX = append(trainX, xs[end:]...)
		trainY = append(trainY, ys[:start]...)
		trainY = append(trainY, ys[end:]...)
		if len(trainX) == 0 || len(testX) == 0 {
			continue
		}

		var stumps []stump
		for tree := 0; tree < numTrees; tree++ {
			idx := bootstrapResample(len(trainX), seed+uint64(f*1000+tree))
			bxs := make([][5]float64, len(idx))
			bys := make([]float64, len(idx))
			for i, id := range idx {
				bxs[i] = trainX[id]
				bys[i] = trainY[id]
			}
			bestErr := math.Inf(1)
			var bestStump stump
			for d := 0; d < 5; d++ {
				s, err := fitStump(d, bxs, bys)
				if err < bestErr {
					bestErr = err
					bestStump = s
				}
			}
			stumps = append(stumps, bestStump)
		}
		ens := ensemble{stumps: stumps}

		var mae float64
		for i, x := range testX {
			mae += math.Abs(ens.predict(x) - testY[i])
		}
		errs = append(errs, mae/float64(len(testX)))
	}
	if len(errs) == 0 {
		return 0
	}
	return stat.StdDev(errs, nil)
}
