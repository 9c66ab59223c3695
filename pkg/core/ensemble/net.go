// Package ensemble implements EnsembleNet (a small feed-forward network
// mapping a feature vector to 8 model weights) and EnsembleEngine (the
// orchestration that combines RatioKernel/TrendAnalyzer/ScenarioExecutor
// output into a final fair value). Grounded on
// aristath-sentinel/internal/modules/optimization/mv_optimizer.go's use
// of gonum.org/v1/gonum/mat.Dense for vectorized linear algebra.
package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dense64, Dense32, Dense8 name the three layers:
// input[F] -> Dense(64)+BN+ReLU+Dropout(0.3) -> Dense(32)+BN+ReLU+Dropout(0.2) -> Dense(8) -> Softmax.
const (
	Dense64 = 64
	Dense32 = 32
	Dense8  = 8
)

// FeatureVectorSize is the length of the feature vector AssembleFeatures
// builds: per-model coherence (8), dispersion (3), mean confidence (1),
// recent per-model accuracy (8).
const FeatureVectorSize = 20

// BatchNormParams holds the running statistics BN uses in eval mode:
// inference is deterministic, dropout/BN always run in eval mode.
type BatchNormParams struct {
	RunningMean *mat.VecDense
	RunningVar  *mat.VecDense
	Gamma       *mat.VecDense
	Beta        *mat.VecDense
}

// NetParams is an immutable snapshot of every learned weight. Replacement
// is by atomic pointer swap (see Engine.SetParams), never in-place
// mutation, per the concurrency design's "neural network replacement."
type NetParams struct {
	W1 *mat.Dense // Dense64 x F
	B1 *mat.VecDense
	BN1 BatchNormParams

	W2 *mat.Dense // Dense32 x Dense64
	B2 *mat.VecDense
	BN2 BatchNormParams

	W3 *mat.Dense // Dense8 x Dense32
	B3 *mat.VecDense

	InputSize int
}

const bnEpsilon = 1e-5

func batchNorm(x *mat.VecDense, bn BatchNormParams) *mat.VecDense {
	n, _ := x.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		normalized := (x.AtVec(i) - bn.RunningMean.AtVec(i)) / math.Sqrt(bn.RunningVar.AtVec(i)+bnEpsilon)
		out.SetVec(i, normalized*bn.Gamma.AtVec(i)+bn.Beta.AtVec(i))
	}
	return out
}

func relu(x *mat.VecDense) *mat.VecDense {
	n, _ := x.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := x.AtVec(i)
		if v < 0 {
			v = 0
		}
		out.SetVec(i, v)
	}
	return out
}

func denseLayer(w *mat.Dense, b *mat.VecDense, x *mat.VecDense) *mat.VecDense {
	rows, _ := w.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(w, x)
	out.AddVec(out, b)
	return out
}

func softmax(x *mat.VecDense) [8]float64 {
	n, _ := x.Dims()
	maxV := x.AtVec(0)
	for i := 1; i < n; i++ {
		if x.AtVec(i) > maxV {
			maxV = x.AtVec(i)
		}
	}
	var sum float64
	exps := make([]float64, n)
	for i := 0; i < n; i++ {
		e := math.Exp(x.AtVec(i) - maxV)
		exps[i] = e
		sum += e
	}
	var out [8]float64
	for i := 0; i < n && i < 8; i++ {
		out[i] = exps[i] / sum
	}
	return out
}

// Forward runs the network in eval mode: dropout is a no-op and batch
// norm uses the stored running statistics, so results are deterministic
// for a fixed parameter snapshot (testable property 1).
func Forward(params *NetParams, features []float64) [8]float64 {
	x := mat.NewVecDense(len(features), features)

	h1 := relu(batchNorm(denseLayer(params.W1, params.B1, x), params.BN1))
	h2 := relu(batchNorm(denseLayer(params.W2, params.B2, h1), params.BN2))
	logits := denseLayer(params.W3, params.B3, h2)

	return softmax(logits)
}

// NewBaselineParams builds a cold-start snapshot to publish before any
// trained network weights exist. Both hidden layers are zeroed, so batch
// norm collapses every activation to zero regardless of the input
// features; the output bias is seeded with ln(weights), and softmax is
// shift-invariant, so Forward reproduces weights exactly on its first
// call. This lets the network run end to end from the first request
// instead of sitting unreachable until a training job publishes real
// parameters.
func NewBaselineParams(inputSize int, weights [8]float64) *NetParams {
	zeroBN := func(n int) BatchNormParams {
		gamma := mat.NewVecDense(n, nil)
		variance := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			gamma.SetVec(i, 1)
			variance.SetVec(i, 1)
		}
		return BatchNormParams{
			RunningMean: mat.NewVecDense(n, nil),
			RunningVar:  variance,
			Gamma:       gamma,
			Beta:        mat.NewVecDense(n, nil),
		}
	}

	bias := mat.NewVecDense(Dense8, nil)
	for i, w := range weights {
		if w <= 0 {
			w = 1e-6
		}
		bias.SetVec(i, math.Log(w))
	}

	return &NetParams{
		W1: mat.NewDense(Dense64, inputSize, nil), B1: mat.NewVecDense(Dense64, nil), BN1: zeroBN(Dense64),
		W2: mat.NewDense(Dense32, Dense64, nil), B2: mat.NewVecDense(Dense32, nil), BN2: zeroBN(Dense32),
		W3: mat.NewDense(Dense8, Dense32, nil), B3: bias,
		InputSize: inputSize,
	}
}
