// Package scenario implements ScenarioExecutor: runs each of the eight
// valuation models under Bull/Base/Bear parameter perturbations,
// producing the 24 ValuationResults (8 models x 3 scenarios) a request
// always emits, plus a per-model coherence score.
package scenario

import (
	"math"
	"time"

	"fundamental_engine/pkg/models"
	"fundamental_engine/pkg/core/valuation"
)

// perturbation describes how one scenario adjusts the shared base Input
// before a model runs. Models that don't consume a perturbed field (e.g.
// Graham/NCAV never read WACC) are unaffected regardless of these deltas.
type perturbation struct {
	waccDelta            float64
	growthDelta          float64
	marginMultiplier     float64
	confidenceMultiplier float64
}

var perturbations = map[models.Scenario]perturbation{
	models.ScenarioBull: {waccDelta: -0.02, growthDelta: 0.03, marginMultiplier: 1.05, confidenceMultiplier: 0.70},
	models.ScenarioBase: {waccDelta: 0, growthDelta: 0, marginMultiplier: 1.00, confidenceMultiplier: 0.85},
	models.ScenarioBear: {waccDelta: 0.03, growthDelta: -0.02, marginMultiplier: 0.95, confidenceMultiplier: 0.65},
}

var scenarioOrder = [3]models.Scenario{models.ScenarioBull, models.ScenarioBase, models.ScenarioBear}

// modelsConsumingWACC and modelsConsumingGrowth/Margin gate which
// perturbations apply to which model: adjustments apply only to models
// that consume the respective parameter.
var modelsConsumingWACC = map[models.ModelID]bool{
	models.ModelDCF: true, models.ModelRIM: true, models.ModelEVA: true,
}
var modelsConsumingGrowth = map[models.ModelID]bool{
	models.ModelDCF: true, models.ModelRIM: true, models.ModelEVA: true, models.ModelLynch: true,
}
var modelsConsumingMargin = map[models.ModelID]bool{
	models.ModelEVA: true, models.ModelPS: true, models.ModelPCF: true,
}

func perturbInput(base valuation.Input, p perturbation, m models.ModelID) valuation.Input {
	in := base
	if modelsConsumingWACC[m] {
		in.WACC += p.waccDelta
		in.CostOfEquity += p.waccDelta
	}
	if modelsConsumingGrowth[m] {
		in.TerminalGrowth += p.growthDelta
		if len(in.GrowthSchedule) > 0 {
			sched := make([]float64, len(base.GrowthSchedule))
			copy(sched, base.GrowthSchedule)
			for i := range sched {
				sched[i] += p.growthDelta
			}
			in.GrowthSchedule = sched
		}
	}
	if modelsConsumingMargin[m] {
		in.OperatingIncome *= p.marginMultiplier
		in.RevenuePerShare *= p.marginMultiplier
		in.OperatingCFPerShare *= p.marginMultiplier
	}
	return in
}

// Result is one model's 3-scenario run plus its coherence.
type Result struct {
	Rows      [3]models.ValuationResult // ordered bull, base, bear
	Coherence float64
}

// Run executes all eight models across all three scenarios, returning
// exactly 24 ValuationResult rows (as 8 Results of 3 rows each).
func Run(companyID string, asOf time.Time, base valuation.Input) map[models.ModelID]Result {
	out := make(map[models.ModelID]Result, len(models.AllModels))
	for _, m := range models.AllModels {
		var rows [3]models.ValuationResult
		values := make([]float64, 0, 3)
		for i, s := range scenarioOrder {
			p := perturbations[s]
			in := perturbInput(base, p, m)
			est := valuation.Estimators[m](in)

			row := models.ValuationResult{
				CompanyID:      companyID,
				AsOf:           asOf,
				ModelID:        m,
				Scenario:       s,
				FairValue:      est.FairValue,
				ConfidenceBase: est.ConfidenceBase * p.confidenceMultiplier,
				Diagnostics:    est.Diagnostics,
			}
			rows[i] = row
			if est.FairValue != nil {
				values = append(values, *est.FairValue)
			}
		}
		out[m] = Result{Rows: rows, Coherence: coherence(values)}
	}
	return out
}

// coherence = 1 - std(values)/|mean|; 0 when fewer than 2 finite values
// or the mean is zero (avoids a divide-by-zero blowup).
func coherence(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	std := math.Sqrt(variance)
	return 1 - std/math.Abs(mean)
}
