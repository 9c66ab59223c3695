// Package training implements WeightTrainer and IndustryTrainer: the
// daily/weekly self-training loop that fits candidate model weights
// against realised prediction error, gates deployment behind a paired
// t-test, smooths the winner into the active vector, and specialises
// per industry via cosine-similarity transfer or a shared meta-learner.
// Grounded on aristath-sentinel/internal/modules/optimization/mv_optimizer.go's
// use of gonum.org/v1/gonum/optimize for gradient-based fitting, and on
// aristath-sentinel/trader-go/pkg/formulas/stats.go /cvar.go for the
// statistical primitives (mean, std, t-distribution) the A/B gate needs.
package training

import (
	"math"
	"time"

	"fundamental_engine/pkg/apperr"
	"fundamental_engine/pkg/lock"
	"fundamental_engine/pkg/models"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sample is one Prediction/Outcome pair with the per-model values that
// produced the prediction, used to fit and backtest a candidate vector.
type Sample struct {
	PerModelValue [8]float64 // index by models.AllModels order
	ActualPrice   float64
}

// Window is the data a training run operates on, restricted to one
// scope (global or a single industry) by the caller.
type Window struct {
	Scope   string // "global" or "industry:<name>"
	Samples []Sample
}

// Config carries the tunables a trainer run needs (mirrors the relevant
// subset of pkg/config.Config so tests can construct one inline).
type Config struct {
	MinSamples     int
	SmoothingAlpha float64
	CVFolds        int
	CVStdThreshold float64
	Seed           uint64
}

// DefaultConfig holds the trainer's default tunables.
func DefaultConfig() Config {
	return Config{MinSamples: 100, SmoothingAlpha: 0.3, CVFolds: 5, CVStdThreshold: 0.2, Seed: 42}
}

// Locks serialises trainer runs per scope so concurrent trainer runs for
// different scopes never block each other, but two runs for the same
// scope never fit and gate at the same time. Run holds the lock only for
// its own pass; persisting the returned vector happens after Run has
// released it.
var Locks = lock.NewRegistry()

// Run executes one trainer pass for a single scope: fit, cross-validate,
// backtest, A/B gate, smooth, and return the vector to deploy. It never
// mutates the currently active vector directly; callers persist the
// result via pkg/store.
func Run(cfg Config, window Window, active *models.WeightVector, now time.Time) (*models.WeightVector, error) {
	release := Locks.Acquire(window.Scope)
	defer release()

	if len(window.Samples) < cfg.MinSamples {
		return nil, apperr.New(apperr.InsufficientData, "fewer than MinSamples prediction/outcome pairs")
	}

	candidateWeights, r2, err := fitWeights(window.Samples)
	if err != nil {
		return nil, err
	}

	cvStd, cvMean := crossValidate(candidateWeights, window.Samples, cfg.CVFolds)
	if cvMean != 0 && cvStd/math.Abs(cvMean) > cfg.CVStdThreshold {
		return nil, apperr.New(apperr.TrainingUnstable, "cv_std exceeds threshold of mean backtest error")
	}

	trainErrors := perSampleErrors(candidateWeights, window.Samples)
	trainMAPE := stat.Mean(trainErrors, nil)

	holdout := window.Samples[int(float64(len(window.Samples))*0.8):]
	backtestErrors := perSampleErrors(candidateWeights, holdout)
	backtestMAPE := stat.Mean(backtestErrors, nil)

	candidate := &models.WeightVector{
		ID:           uuid.NewString(),
		OwnerKind:    ownerKindFor(window.Scope),
		OwnerID:      window.Scope,
		ModelWeights: candidateWeights,
		Source:       models.SourceTrained,
		Metrics: models.TrainingMetrics{
			TrainMAPE: trainMAPE, BacktestMAPE: backtestMAPE,
			CVStd: cvStd, SampleCount: len(window.Samples),
		},
		Deployed:      models.DeployCandidate,
		EffectiveFrom: now,
	}

	if active == nil {
		candidate.Deployed = models.DeployActive
		candidate.MLConfidence = mlConfidence(r2, cvStd, len(window.Samples), cfg.MinSamples)
		return candidate, nil
	}

	activeErrors := perSampleErrors(active.ModelWeights, holdout)
	activeMAPE := stat.Mean(activeErrors, nil)

	wins, _ := abGate(backtestErrors, activeErrors)
	if !wins {
		candidate.Deployed = models.DeployCandidate
		candidate.RejectReason = "rejected: insufficient improvement"
		return candidate, nil
	}

	smoothed := smooth(candidateWeights, active.ModelWeights, cfg.SmoothingAlpha)
	candidate.ModelWeights = smoothed
	candidate.Source = models.SourceSmoothed
	candidate.Deployed = models.DeployActive
	candidate.MLConfidence = mlConfidence(r2, cvStd, len(window.Samples), cfg.MinSamples)
	_ = activeMAPE
	return candidate, nil
}

func ownerKindFor(scope string) models.OwnerKind {
	if scope == "global" {
		return models.OwnerGlobal
	}
	return models.OwnerIndustry
}

// mlConfidence combines R² and cross-validation stability into one
// score: clamp(R² - min(0.2, cv_std*0.5), 0, 1), then tapered by sample
// count so a handful of samples never reports high confidence.
func mlConfidence(r2, cvStd float64, sampleCount, minSamples int) float64 {
	base := r2 - math.Min(0.2, cvStd*0.5)
	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}
	taper := math.Min(1, float64(sampleCount)/(float64(minSamples)*1.5))
	return base * taper
}

// fitWeights minimises MAPE of sum(w_m*v_m) vs actual_price with
// gonum's Nelder-Mead simplex search (derivative-free; no gradient is
// computed) over the probability simplex, reparameterised through
// softmax so the optimizer works in unconstrained space and the result
// always sums to 1. Grounded on mv_optimizer.go's use of gonum/optimize.
func fitWeights(samples []Sample) ([8]float64, float64, error) {
	objective := func(z []float64) float64 {
		w := softmax8(z)
		var sumErr float64
		for _, s := range samples {
			pred := dot8(w, s.PerModelValue)
			if s.ActualPrice == 0 {
				continue
			}
			sumErr += math.Abs((pred - s.ActualPrice) / s.ActualPrice)
		}
		return sumErr / float64(len(samples))
	}

	problem := optimize.Problem{Func: objective}
	initial := make([]float64, 8)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{MajorIterations: 200}, &optimize.NelderMead{})
	if err != nil && result == nil {
		return [8]float64{}, 0, apperr.Wrap(apperr.TrainingUnstable, "Nelder-Mead weight fit failed to converge", err)
	}

	w := softmax8(result.X)
	r2 := rSquaredForWeights(w, samples)
	return w, r2, nil
}

func softmax8(z []float64) [8]float64 {
	var out [8]float64
	maxV := z[0]
	for _, v := range z {
		if v > maxV {
			maxV = v
		}
	}
	var sum float64
	exps := make([]float64, len(z))
	for i, v := range z {
		e := math.Exp(v - maxV)
		exps[i] = e
		sum += e
	}
	for i := range out {
		if i < len(exps) {
			out[i] = exps[i] / sum
		}
	}
	return out
}

func dot8(w, v [8]float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * v[i]
	}
	return sum
}

func rSquaredForWeights(w [8]float64, samples []Sample) float64 {
	preds := make([]float64, len(samples))
	actuals := make([]float64, len(samples))
	for i, s := range samples {
		preds[i] = dot8(w, s.PerModelValue)
		actuals[i] = s.ActualPrice
	}
	return stat.RSquared(preds, actuals, nil, func(x float64) float64 { return x })
}

func perSampleErrors(w [8]float64, samples []Sample) []float64 {
	errs := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.ActualPrice == 0 {
			continue
		}
		pred := dot8(w, s.PerModelValue)
		errs = append(errs, math.Abs((pred-s.ActualPrice)/s.ActualPrice))
	}
	return errs
}

// crossValidate partitions samples into k folds, fits on k-1 and scores
// on the held-out fold, and reports std/mean of the per-fold MAPE. A fold
// whose fit fails is scored with w instead.
func crossValidate(w [8]float64, samples []Sample, folds int) (cvStd, cvMean float64) {
	if folds < 2 || len(samples) < folds {
		return 0, 0
	}
	foldSize := len(samples) / folds
	maes := make([]float64, 0, folds)
	for f := 0; f < folds; f++ {
		start, end := f*foldSize, (f+1)*foldSize
		if f == folds-1 {
			end = len(samples)
		}
		fold := samples[start:end]
		train := make([]Sample, 0, len(samples)-len(fold))
		train = append(train, samples[:start]...)
		train = append(train, samples[end:]...)
		foldWeights := w
		if fw, _, err := fitWeights(train); err == nil {
			foldWeights = fw
		}
		errs := perSampleErrors(foldWeights, fold)
		if len(errs) > 0 {
			maes = append(maes, stat.Mean(errs, nil))
		}
	}
	if len(maes) == 0 {
		return 0, 0
	}
	return stat.StdDev(maes, nil), stat.Mean(maes, nil)
}

// abGate is a paired two-sided t-test of per-sample errors: the
// candidate wins if its backtest MAPE improvement is significant at
// p<0.05.
func abGate(candidateErrors, activeErrors []float64) (wins bool, pValue float64) {
	n := len(candidateErrors)
	if n == 0 || n != len(activeErrors) {
		return false, 1
	}
	diffs := make([]float64, n)
	for i := range diffs {
		diffs[i] = activeErrors[i] - candidateErrors[i] // positive means candidate is better
	}
	meanDiff := stat.Mean(diffs, nil)
	if n < 2 {
		return meanDiff > 0, 1
	}
	stdDiff := stat.StdDev(diffs, nil)
	if stdDiff == 0 {
		return meanDiff > 0, 0
	}
	se := stdDiff / math.Sqrt(float64(n))
	tStat := meanDiff / se

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	pValue = 2 * (1 - dist.CDF(math.Abs(tStat)))
	return meanDiff > 0 && pValue < 0.05, pValue
}

// smooth applies exponential smoothing `new = alpha*candidate +
// (1-alpha)*active`, then renormalises to sum 1.
func smooth(candidate, active [8]float64, alpha float64) [8]float64 {
	var out [8]float64
	var sum float64
	for i := range out {
		out[i] = alpha*candidate[i] + (1-alpha)*active[i]
		sum += out[i]
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
