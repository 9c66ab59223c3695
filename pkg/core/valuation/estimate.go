package valuation

import "fundamental_engine/pkg/models"

// Estimators maps each model ID to its pure estimation function so
// ScenarioExecutor can iterate models.AllModels without a type switch.
var Estimators = map[models.ModelID]func(Input) Estimate{
	models.ModelDCF:    DCF,
	models.ModelRIM:    RIM,
	models.ModelEVA:    EVA,
	models.ModelGraham: Graham,
	models.ModelLynch:  Lynch,
	models.ModelNCAV:   NCAV,
	models.ModelPS:     PriceToSales,
	models.ModelPCF:    PriceToCashFlow,
}

// EstimateAll runs every one of the eight models against the same
// unperturbed input, for callers (diagnostics, tests) that want a base
// case without going through the scenario executor.
func EstimateAll(in Input) map[models.ModelID]Estimate {
	out := make(map[models.ModelID]Estimate, len(models.AllModels))
	for _, m := range models.AllModels {
		out[m] = Estimators[m](in)
	}
	return out
}
