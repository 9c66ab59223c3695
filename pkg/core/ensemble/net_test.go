package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForward_BaselineParamsReproduceWeights(t *testing.T) {
	weights := [8]float64{0.20, 0.15, 0.15, 0.12, 0.10, 0.08, 0.10, 0.10}
	params := NewBaselineParams(FeatureVectorSize, weights)

	features := make([]float64, FeatureVectorSize)
	for i := range features {
		features[i] = float64(i) / 10
	}

	out := Forward(params, features)

	var sum float64
	for i, w := range weights {
		assert.InDelta(t, w, out[i], 1e-9)
		sum += out[i]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestForward_DeterministicForFixedParams(t *testing.T) {
	weights := [8]float64{0.20, 0.15, 0.15, 0.12, 0.10, 0.08, 0.10, 0.10}
	params := NewBaselineParams(FeatureVectorSize, weights)
	features := make([]float64, FeatureVectorSize)
	for i := range features {
		features[i] = math.Sin(float64(i))
	}

	first := Forward(params, features)
	second := Forward(params, features)

	assert.Equal(t, first, second)
}

func TestForward_OutputIsValidDistribution(t *testing.T) {
	params := NewBaselineParams(FeatureVectorSize, [8]float64{0.2, 0.2, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1})
	features := make([]float64, FeatureVectorSize)
	for i := range features {
		features[i] = float64(i) - 5
	}

	out := Forward(params, features)

	var sum float64
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
