package weights

import (
	"testing"

	"fundamental_engine/pkg/models"
)

func TestResolve_PrecedenceOrder(t *testing.T) {
	def := models.WeightVector{ModelWeights: [8]float64{1, 0, 0, 0, 0, 0, 0, 0}}
	cache := NewCache(def)

	if got := cache.Resolve("acme", "software"); got.ModelWeights != def.ModelWeights {
		t.Fatalf("expected default weights with an empty cache")
	}

	global := &models.WeightVector{OwnerKind: models.OwnerGlobal, ModelWeights: [8]float64{0, 1, 0, 0, 0, 0, 0, 0}}
	cache.Set(models.OwnerGlobal, "global", global)
	if got := cache.Resolve("acme", "software"); got.ModelWeights != global.ModelWeights {
		t.Fatalf("expected global weights to override the default")
	}

	industry := &models.WeightVector{OwnerKind: models.OwnerIndustry, ModelWeights: [8]float64{0, 0, 1, 0, 0, 0, 0, 0}}
	cache.Set(models.OwnerIndustry, "software", industry)
	if got := cache.Resolve("acme", "software"); got.ModelWeights != industry.ModelWeights {
		t.Fatalf("expected industry weights to override global")
	}

	override := &models.WeightVector{OwnerKind: models.OwnerCompanyOverride, ModelWeights: [8]float64{0, 0, 0, 1, 0, 0, 0, 0}}
	cache.Set(models.OwnerCompanyOverride, "acme", override)
	if got := cache.Resolve("acme", "software"); got.ModelWeights != override.ModelWeights {
		t.Fatalf("expected company override to beat industry weights")
	}

	if got := cache.Resolve("other-co", "software"); got.ModelWeights != industry.ModelWeights {
		t.Fatalf("expected unrelated company to still see industry weights, not the override")
	}
}

func TestResolveTrained_ReportsMissForAnUntrainedScope(t *testing.T) {
	cache := NewCache(models.WeightVector{ModelWeights: [8]float64{1, 0, 0, 0, 0, 0, 0, 0}})

	if _, ok := cache.ResolveTrained("acme", "software"); ok {
		t.Fatalf("expected no trained vector for an empty cache")
	}

	global := &models.WeightVector{OwnerKind: models.OwnerGlobal, ModelWeights: [8]float64{0, 1, 0, 0, 0, 0, 0, 0}}
	cache.Set(models.OwnerGlobal, "global", global)
	v, ok := cache.ResolveTrained("acme", "software")
	if !ok || v.ModelWeights != global.ModelWeights {
		t.Fatalf("expected the global vector once trained")
	}
}

func TestSet_DoesNotMutatePriorSnapshot(t *testing.T) {
	cache := NewCache(models.WeightVector{})
	global := &models.WeightVector{OwnerKind: models.OwnerGlobal, ModelWeights: [8]float64{1}}
	cache.Set(models.OwnerGlobal, "global", global)

	snapBefore := *cache.current.Load()

	other := &models.WeightVector{OwnerKind: models.OwnerGlobal, ModelWeights: [8]float64{0, 1}}
	cache.Set(models.OwnerIndustry, "software", other)

	if len(snapBefore) != 1 {
		t.Errorf("expected the earlier snapshot to remain untouched with 1 entry, got %d", len(snapBefore))
	}
}
