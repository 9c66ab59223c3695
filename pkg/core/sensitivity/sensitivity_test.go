package sensitivity

import (
	"context"
	"testing"

	"fundamental_engine/pkg/core/valuation"
)

func linearEval(in valuation.Input) *float64 {
	v := in.EPS * 10
	return &v
}

func TestOneWay_ProducesMonotonicOutput(t *testing.T) {
	base := valuation.Input{EPS: 1}
	points := OneWay(base, linearEval, func(in *valuation.Input, v float64) { in.EPS = v }, 1, 5, 5)
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].FairValue < points[i-1].FairValue {
			t.Errorf("expected monotonically increasing fair value, got %v then %v", points[i-1].FairValue, points[i].FairValue)
		}
	}
}

func TestTwoWay_GridCoversCartesianProduct(t *testing.T) {
	base := valuation.Input{EPS: 1}
	grid := TwoWay(base, linearEval,
		func(in *valuation.Input, v float64) { in.EPS = v },
		func(in *valuation.Input, v float64) { in.BVPS = v },
		1, 3, 3, 1, 3, 3)
	if len(grid) != 9 {
		t.Fatalf("expected 3x3=9 grid points, got %d", len(grid))
	}
}

func TestTornado_SortedByDescendingImpact(t *testing.T) {
	base := valuation.Input{EPS: 1}
	rows := Tornado(base, linearEval, map[string]func(*valuation.Input, float64){
		"eps": func(in *valuation.Input, v float64) { in.EPS = v },
	}, map[string]float64{"eps": 1}, 0.5)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Impact <= 0 {
		t.Errorf("expected positive impact for an increasing evaluator, got %v", rows[0].Impact)
	}
}

func TestMonteCarlo_ReproducibleForFixedSeed(t *testing.T) {
	base := valuation.Input{EPS: 1}
	dists := []VariableDistribution{
		{Name: "eps", Kind: Normal, Mean: 1, StdDev: 0.1, Setter: func(in *valuation.Input, v float64) { in.EPS = v }},
	}

	statsA, err := MonteCarlo(context.Background(), base, linearEval, dists, 2000, 7, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	statsB, err := MonteCarlo(context.Background(), base, linearEval, dists, 2000, 7, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if statsA.Mean != statsB.Mean || statsA.Percentiles[50] != statsB.Percentiles[50] {
		t.Errorf("expected reproducible stats for the same seed, got %+v vs %+v", statsA, statsB)
	}
	if statsA.N != 2000 {
		t.Errorf("expected 2000 samples, got %d", statsA.N)
	}
}

func TestMonteCarlo_CancelledContextReturnsError(t *testing.T) {
	base := valuation.Input{EPS: 1}
	dists := []VariableDistribution{
		{Name: "eps", Kind: Uniform, Low: 0, High: 2, Setter: func(in *valuation.Input, v float64) { in.EPS = v }},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MonteCarlo(ctx, base, linearEval, dists, 5000, 1, 2)
	if err == nil {
		t.Errorf("expected an error from a pre-cancelled context")
	}
}
