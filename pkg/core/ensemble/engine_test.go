package ensemble

import (
	"testing"
	"time"

	"fundamental_engine/pkg/core/valuation"
	"fundamental_engine/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestValue_HealthyLargeCap(t *testing.T) {
	engine := NewEngine(nil) // no resolver -> DefaultWeights, no network call

	base := valuation.Input{
		EPS: 6.50, BVPS: 28.0, SharesOutstanding: 1e9,
		Revenue: 100000, NetIncome: 15000, OperatingIncome: 20000,
		WACC: 0.09, CostOfEquity: 0.09, TerminalGrowth: 0.025,
		GrowthSchedule: []float64{0.06, 0.05, 0.04, 0.03, 0.03},
		FCF0: 20000, InvestedCapital: 80000, NetDebt: 10000,
		CurrentAssets: 40000, TotalLiabilities: 60000,
		RevenuePerShare: 0.0001, OperatingCFPerShare: 0.00002,
		IndustryPS: 2.0, IndustryPCF: 10.0, DataCompleteness: 1,
	}

	result := engine.Value("acme", time.Now(), 120, nil, base, Options{})

	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.LessOrEqual(t, result.ValueRangeLow, result.FinalFairValue)
	assert.LessOrEqual(t, result.FinalFairValue, result.ValueRangeHigh)
	assert.Contains(t, []string{"Hold", "Buy", "Strong Buy"}, result.Recommendation)
}

func TestValue_NetworkParamsDriveWeightsWhenNoTrainedVectorResolves(t *testing.T) {
	engine := NewEngine(func(tenantID, companyID, industry string) *models.WeightVector {
		return nil // nothing trained: Value must fall through to the network, not DefaultWeights
	})
	var defaultArray [8]float64
	for i, m := range models.AllModels {
		defaultArray[i] = DefaultWeights[m]
	}
	engine.SetParams(NewBaselineParams(FeatureVectorSize, defaultArray))

	base := valuation.Input{
		EPS: 6.50, BVPS: 28.0, SharesOutstanding: 1e9,
		Revenue: 100000, NetIncome: 15000, OperatingIncome: 20000,
		WACC: 0.09, CostOfEquity: 0.09, TerminalGrowth: 0.025,
		GrowthSchedule: []float64{0.06, 0.05, 0.04, 0.03, 0.03},
		FCF0: 20000, InvestedCapital: 80000, NetDebt: 10000,
		CurrentAssets: 40000, TotalLiabilities: 60000,
		RevenuePerShare: 0.0001, OperatingCFPerShare: 0.00002,
		IndustryPS: 2.0, IndustryPCF: 10.0, DataCompleteness: 1,
	}

	result := engine.Value("acme", time.Now(), 120, nil, base, Options{})

	var sum float64
	for _, m := range models.AllModels {
		w := result.ModelWeights[m]
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestValue_GrahamUndefinedDegradesGracefully(t *testing.T) {
	engine := NewEngine(nil)
	base := valuation.Input{
		EPS: -1.0, BVPS: 10.0, SharesOutstanding: 1e9,
		WACC: 0.09, CostOfEquity: 0.09, TerminalGrowth: 0.025,
		GrowthSchedule: []float64{0.05, 0.05, 0.05, 0.05, 0.05},
		FCF0: 20000, InvestedCapital: 80000, NetDebt: 10000,
		CurrentAssets: 40000, TotalLiabilities: 60000,
		RevenuePerShare: 0.0001, OperatingCFPerShare: 0.00002,
		IndustryPS: 2.0, IndustryPCF: 10.0, DataCompleteness: 1,
		OperatingIncome: 20000, NetIncome: 15000, Revenue: 100000,
	}
	result := engine.Value("acme", time.Now(), 120, nil, base, Options{})
	assert.Equal(t, "degraded", string(result.Envelope.Status))
}
