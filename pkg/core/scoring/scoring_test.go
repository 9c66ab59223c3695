package scoring

import (
	"testing"
	"time"

	"fundamental_engine/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func TestScoreValuation_AtMedianScoresHigh(t *testing.T) {
	in := Inputs{PE: ptr(15), IndustryPE: 15}
	score := ScoreValuation(in)
	if score.Value < 99 {
		t.Errorf("expected near-100 score at the median, got %v", score.Value)
	}
}

func TestScoreRisk_AltmanBandsClamp(t *testing.T) {
	safe := ScoreRisk(Inputs{AltmanZ: ptr(4.0)})
	distress := ScoreRisk(Inputs{AltmanZ: ptr(1.0)})
	if safe.Value != 100 {
		t.Errorf("expected Z>=3 to score 100, got %v", safe.Value)
	}
	if distress.Value != 0 {
		t.Errorf("expected Z<1.81 to score 0, got %v", distress.Value)
	}
}

func TestScoreGrowth_NegativeCAGRScoresBelowNeutral(t *testing.T) {
	neg := ScoreGrowth(Inputs{RevenueCAGR: ptr(-0.10)})
	pos := ScoreGrowth(Inputs{RevenueCAGR: ptr(0.10)})
	if neg.Value >= 50 {
		t.Errorf("expected negative CAGR to score below neutral, got %v", neg.Value)
	}
	if pos.Value <= 50 {
		t.Errorf("expected positive CAGR to score above neutral, got %v", pos.Value)
	}
}

func TestComposite_RatingBands(t *testing.T) {
	tests := []struct {
		composite float64
		want      models.Rating
	}{
		{95, models.RatingAPlus}, {85, models.RatingA}, {75, models.RatingBPlus},
		{65, models.RatingB}, {55, models.RatingCPlus}, {45, models.RatingC},
		{35, models.RatingD}, {10, models.RatingF},
	}
	for _, tc := range tests {
		if got := ratingFor(tc.composite); got != tc.want {
			t.Errorf("ratingFor(%v) = %v, want %v", tc.composite, got, tc.want)
		}
	}
}

func TestComposite_WeightedSum(t *testing.T) {
	dims := map[models.Dimension]models.DimensionScore{
		models.DimValuation:     {Value: 80},
		models.DimProfitability: {Value: 60},
		models.DimGrowth:        {Value: 70},
		models.DimHealth:        {Value: 90},
		models.DimRisk:          {Value: 50},
	}
	weights := DefaultWeights()
	result := Composite("acme", time.Now(), dims, weights, models.ScoreDefault, 0)

	expected := 0.25*80 + 0.20*60 + 0.20*70 + 0.20*90 + 0.15*50
	if diff := result.Composite - expected; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected composite %v, got %v", expected, result.Composite)
	}
}

func TestRank_StableTieBreakByTicker(t *testing.T) {
	scores := map[string]models.CompositeScore{
		"ZZZ": {Composite: 80, Rating: models.RatingA},
		"AAA": {Composite: 80, Rating: models.RatingA},
		"MMM": {Composite: 90, Rating: models.RatingAPlus},
	}
	ranked := Rank(scores, nil)
	if ranked[0].Ticker != "MMM" {
		t.Fatalf("expected MMM first, got %v", ranked[0].Ticker)
	}
	if ranked[1].Ticker != "AAA" || ranked[2].Ticker != "ZZZ" {
		t.Errorf("expected tie-break to sort AAA before ZZZ, got %v then %v", ranked[1].Ticker, ranked[2].Ticker)
	}
}

func TestRank_MinScoreFilters(t *testing.T) {
	scores := map[string]models.CompositeScore{
		"A": {Composite: 80}, "B": {Composite: 20},
	}
	min := 50.0
	ranked := Rank(scores, &min)
	if len(ranked) != 1 || ranked[0].Ticker != "A" {
		t.Errorf("expected only A to survive the min_score filter, got %+v", ranked)
	}
}

func TestFitDimensionWeights_InsufficientSamplesReturnsError(t *testing.T) {
	_, _, _, err := FitDimensionWeights(make([]DimensionSample, 10), 20, 1)
	if err == nil {
		t.Fatalf("expected an insufficient-data error")
	}
}

func TestFitDimensionWeights_WeightsSumToOne(t *testing.T) {
	samples := make([]DimensionSample, 150)
	for i := range samples {
		v := float64(i % 100)
		samples[i] = DimensionSample{
			Scores: map[models.Dimension]float64{
				models.DimValuation: v, models.DimProfitability: 100 - v,
				models.DimGrowth: v / 2, models.DimHealth: 50, models.DimRisk: v,
			},
			ForwardReturn: v * 0.001,
		}
	}
	weights, _, _, err := FitDimensionWeights(samples, 20, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, w := range weights {
		sum += w
		if w < 0 {
			t.Errorf("expected non-negative weight, got %v", w)
		}
	}
	if sum < 1-1e-6 || sum > 1+1e-6 {
		t.Errorf("expected weights to sum to 1, got %v", sum)
	}
}
