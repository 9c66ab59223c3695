package ensemble

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"fundamental_engine/pkg/apperr"
	"fundamental_engine/pkg/core/scenario"
	"fundamental_engine/pkg/core/trend"
	"fundamental_engine/pkg/core/valuation"
	"fundamental_engine/pkg/models"

	"github.com/google/uuid"
)

// DefaultWeights is the default weight table from the glossary, used
// when no trained WeightVector applies for (tenant, company, industry).
var DefaultWeights = map[models.ModelID]float64{
	models.ModelDCF: 0.20, models.ModelRIM: 0.15, models.ModelEVA: 0.15,
	models.ModelGraham: 0.12, models.ModelLynch: 0.10, models.ModelNCAV: 0.08,
	models.ModelPS: 0.10, models.ModelPCF: 0.10,
}

// WeightResolver looks up the best WeightVector for (tenant, company,
// industry), honouring the precedence company-override > industry-active
// > global-active > default. A nil return means "use DefaultWeights and
// skip the network."
type WeightResolver func(tenantID, companyID, industry string) *models.WeightVector

// Engine orchestrates ScenarioExecutor + EnsembleNet into a final fair
// value. Its net params are replaced by atomic pointer swap so a
// training job can publish new weights without ever exposing a torn
// read to an in-flight valuation.
type Engine struct {
	params   atomic.Pointer[NetParams]
	resolver WeightResolver
}

// NewEngine constructs an engine with no network params loaded; until
// SetParams is called, Value always falls back to DefaultWeights.
func NewEngine(resolver WeightResolver) *Engine {
	return &Engine{resolver: resolver}
}

// SetParams atomically swaps in a new, immutable network snapshot.
func (e *Engine) SetParams(p *NetParams) { e.params.Store(p) }

// Options configures a single Value() call.
type Options struct {
	HorizonDays int
	TenantID    string
	Industry    string
}

// Result is the EnsembleResult payload.
type Result struct {
	AsOf            time.Time
	FinalFairValue  float64
	Confidence      float64
	ValueRangeLow   float64
	ValueRangeHigh  float64
	ModelWeights    map[models.ModelID]float64
	ScenarioWeights map[models.Scenario]float64
	PerModelValues  map[models.ModelID][3]models.NullableRatio // bull, base, bear
	Recommendation  string
	Envelope        apperr.Envelope
	Prediction      models.Prediction
}

// Value implements the 9-step valuation pipeline.
func (e *Engine) Value(companyID string, asOf time.Time, currentPrice float64, trendSeries []trend.Point, base valuation.Input, opts Options) Result {
	env := apperr.Envelope{Status: apperr.StatusOK}

	// Step 1: trend (optional, used only for scenario-weight interpolation).
	var trendMetrics *models.TrendMetrics
	if len(trendSeries) >= 3 {
		if tm, err := trend.Analyze(companyID, "price", asOf, trendSeries); err == nil {
			trendMetrics = &tm
		}
	}

	// Step 2: resolve CAPM-derived discount rates, then run the
	// ScenarioExecutor -> 24 ValuationResults.
	base = base.ResolveDiscountRates()
	scenarioResults := scenario.Run(companyID, asOf, base)

	// Step 3: resolve weights.
	weightVector := e.resolveWeights(opts.TenantID, companyID, opts.Industry)
	modelWeights := e.modelWeights(weightVector, scenarioResults, base)

	// Step 4: scenario weights from trend direction.
	scenarioWeights := scenarioWeightsFromTrend(trendMetrics)

	// Step 5/6: blend scenario values per model, then combine across models.
	perModelValues := make(map[models.ModelID][3]models.NullableRatio, 8)
	var finalValue, finalConfidence float64
	missingMetrics := []string{}
	totalUsedWeight := 0.0

	for _, m := range models.AllModels {
		res := scenarioResults[m]
		perModelValues[m] = [3]models.NullableRatio{res.Rows[0].FairValue, res.Rows[1].FairValue, res.Rows[2].FairValue}

		vBlend, cBlend, anyFinite := blendScenarios(res, scenarioWeights)
		if !anyFinite {
			missingMetrics = append(missingMetrics, string(m))
			continue
		}
		w := modelWeights[m]
		finalValue += w * vBlend
		finalConfidence += w * cBlend
		totalUsedWeight += w
	}

	if totalUsedWeight == 0 {
		env.Fail("no finite model result")
		return Result{AsOf: asOf, Envelope: env}
	}
	if totalUsedWeight < 0.999 {
		// Renormalise over the models that produced finite values.
		finalValue /= totalUsedWeight
		finalConfidence /= totalUsedWeight
	}
	if len(missingMetrics) > 0 {
		env.AddReason(fmt.Sprintf("degraded: missing %v", missingMetrics))
	}
	finalConfidence = clamp01(finalConfidence)

	// Step 7: value range from the weighted 24 values.
	low, high := valueRange(scenarioResults, modelWeights, scenarioWeights)

	// Step 8: recommendation.
	recommendation := recommend(finalValue, currentPrice, finalConfidence)

	// Step 9: Prediction record.
	horizon := opts.HorizonDays
	if horizon == 0 {
		horizon = 90
	}
	prediction := models.Prediction{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		IssuedAt:      asOf,
		HorizonDays:   horizon,
		FairValue:     finalValue,
		Confidence:    finalConfidence,
		WeightsDigest: weightsDigest(modelWeights),
	}

	return Result{
		AsOf: asOf, FinalFairValue: finalValue, Confidence: finalConfidence,
		ValueRangeLow: low, ValueRangeHigh: high,
		ModelWeights: modelWeights, ScenarioWeights: scenarioWeights,
		PerModelValues: perModelValues, Recommendation: recommendation,
		Envelope: env, Prediction: prediction,
	}
}

func (e *Engine) resolveWeights(tenantID, companyID, industry string) *models.WeightVector {
	if e.resolver == nil {
		return nil
	}
	return e.resolver(tenantID, companyID, industry)
}

// modelWeights returns the active WeightVector's weights if present;
// otherwise, if network params are loaded, it runs the network on the
// assembled feature vector; otherwise DefaultWeights (when no trained
// weights are available, the network is never called).
func (e *Engine) modelWeights(wv *models.WeightVector, scenarioResults map[models.ModelID]scenario.Result, base valuation.Input) map[models.ModelID]float64 {
	if wv != nil {
		out := make(map[models.ModelID]float64, 8)
		for i, m := range models.AllModels {
			out[m] = wv.ModelWeights[i]
		}
		return out
	}

	params := e.params.Load()
	if params == nil {
		return DefaultWeights
	}

	features := AssembleFeatures(scenarioResults)
	w := Forward(params, features)
	out := make(map[models.ModelID]float64, 8)
	for i, m := range models.AllModels {
		out[m] = w[i]
	}
	return out
}

// AssembleFeatures builds the ~20-dimensional feature vector from
// per-model coherence (8), dispersion of the 24 values (3: std/mean,
// max-min/mean, median-mean), mean confidence_base (1), and a recent
// per-model accuracy placeholder (8) that the caller may overwrite with
// real backtest accuracy once available.
func AssembleFeatures(scenarioResults map[models.ModelID]scenario.Result) []float64 {
	features := make([]float64, 0, 20)

	var allValues []float64
	var allConfidence []float64
	for _, m := range models.AllModels {
		r := scenarioResults[m]
		features = append(features, r.Coherence)
		for _, row := range r.Rows {
			if row.FairValue != nil {
				allValues = append(allValues, *row.FairValue)
			}
			allConfidence = append(allConfidence, row.ConfidenceBase)
		}
	}

	stdOverMean, rangeOverMean, medianOverMean := dispersion(allValues)
	features = append(features, stdOverMean, rangeOverMean, medianOverMean)

	meanConfidence := 0.0
	if len(allConfidence) > 0 {
		for _, c := range allConfidence {
			meanConfidence += c
		}
		meanConfidence /= float64(len(allConfidence))
	}
	features = append(features, meanConfidence)

	for range models.AllModels {
		features = append(features, 0.5) // neutral accuracy prior until backtest history is wired in
	}

	return features
}

func dispersion(values []float64) (stdOverMean, rangeOverMean, medianOverMean float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0, 0, 0
	}

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	std := math.Sqrt(variance)

	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return std / math.Abs(mean), (sorted[len(sorted)-1] - sorted[0]) / math.Abs(mean), (median - mean) / math.Abs(mean)
}

// scenarioWeightsFromTrend derives bull/base/bear weights from the
// recent trend direction, interpolating linearly
// between the named anchor points for intermediate directions.
func scenarioWeightsFromTrend(tm *models.TrendMetrics) map[models.Scenario]float64 {
	anchors := map[models.Direction][3]float64{
		models.StrongImproving: {0.45, 0.40, 0.15},
		models.Improving:       {0.35, 0.45, 0.20},
		models.Stable:          {0.25, 0.50, 0.25},
		models.Declining:       {0.20, 0.45, 0.35},
		models.StrongDeclining: {0.15, 0.40, 0.45},
	}
	w := anchors[models.Stable]
	if tm != nil {
		if a, ok := anchors[tm.Direction]; ok {
			w = a
		}
	}
	return map[models.Scenario]float64{models.ScenarioBull: w[0], models.ScenarioBase: w[1], models.ScenarioBear: w[2]}
}

func blendScenarios(r scenario.Result, scenarioWeights map[models.Scenario]float64) (value, confidence float64, anyFinite bool) {
	order := [3]models.Scenario{models.ScenarioBull, models.ScenarioBase, models.ScenarioBear}
	totalWeight := 0.0
	for i, s := range order {
		row := r.Rows[i]
		if row.FairValue == nil {
			continue
		}
		w := scenarioWeights[s]
		value += w * *row.FairValue
		confidence += w * row.ConfidenceBase
		totalWeight += w
		anyFinite = true
	}
	if totalWeight > 0 && totalWeight != 1 {
		value /= totalWeight
		confidence /= totalWeight
	}
	return value, confidence, anyFinite
}

// valuedWeight pairs a candidate fair value with its combined
// model*scenario weight for percentile computation.
type valuedWeight struct {
	value  float64
	weight float64
}

// valueRange computes [p10, p90] of the 24 values, each weighted by
// (model_weight * scenario_weight).
func valueRange(scenarioResults map[models.ModelID]scenario.Result, modelWeights map[models.ModelID]float64, scenarioWeights map[models.Scenario]float64) (low, high float64) {
	var entries []valuedWeight
	order := [3]models.Scenario{models.ScenarioBull, models.ScenarioBase, models.ScenarioBear}
	for _, m := range models.AllModels {
		r := scenarioResults[m]
		for i, s := range order {
			row := r.Rows[i]
			if row.FairValue == nil {
				continue
			}
			entries = append(entries, valuedWeight{value: *row.FairValue, weight: modelWeights[m] * scenarioWeights[s]})
		}
	}
	if len(entries) == 0 {
		return 0, 0
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	var total float64
	for _, e := range entries {
		total += e.weight
	}
	low = weightedPercentile(entries, total, 0.10)
	high = weightedPercentile(entries, total, 0.90)
	return low, high
}

func weightedPercentile(entries []valuedWeight, total float64, pct float64) float64 {
	if total == 0 {
		return entries[0].value
	}
	target := pct * total
	var cum float64
	for _, e := range entries {
		cum += e.weight
		if cum >= target {
			return e.value
		}
	}
	return entries[len(entries)-1].value
}

func recommend(finalValue, currentPrice, confidence float64) string {
	if currentPrice == 0 {
		return "Hold"
	}
	upside := finalValue/currentPrice - 1
	switch {
	case upside > 0.20 && confidence > 0.6:
		return "Strong Buy"
	case upside > 0.10:
		return "Buy"
	case upside > -0.10:
		return "Hold"
	case upside > -0.20:
		return "Sell"
	default:
		return "Strong Sell"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func weightsDigest(weights map[models.ModelID]float64) string {
	digest := ""
	for _, m := range models.AllModels {
		digest += fmt.Sprintf("%s:%.6f;", m, weights[m])
	}
	return digest
}
