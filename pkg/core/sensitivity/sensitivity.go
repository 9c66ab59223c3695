// Package sensitivity implements SensitivityAnalyzer: one-way, two-way,
// tornado, and Monte Carlo analyses over a valuation model's parameters.
// Monte Carlo draws from gonum's distuv distributions, grounded on
// aristath-sentinel/trader-go/pkg/formulas/cvar.go's use of
// gonum.org/v1/gonum/stat/distuv, and batches are fanned out across a
// bounded worker pool via golang.org/x/sync/errgroup so a large N never
// blocks the caller's I/O loop.
package sensitivity

import (
	"context"
	"math"
	"sort"
	"sync"

	"fundamental_engine/pkg/core/valuation"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// Evaluator runs one valuation model against a perturbed Input and
// returns the fair value (nil when undefined).
type Evaluator func(valuation.Input) *float64

// Point is one sampled (variable value, output) pair.
type Point struct {
	Value     float64
	FairValue float64
}

// OneWay varies a single parameter across n points between range
// endpoints (inclusive) and reruns the valuation at each.
func OneWay(base valuation.Input, eval Evaluator, setter func(*valuation.Input, float64), low, high float64, n int) []Point {
	if n < 2 {
		n = 2
	}
	out := make([]Point, 0, n)
	step := (high - low) / float64(n-1)
	for i := 0; i < n; i++ {
		v := low + step*float64(i)
		in := base
		setter(&in, v)
		if fv := eval(in); fv != nil {
			out = append(out, Point{Value: v, FairValue: *fv})
		}
	}
	return out
}

// GridPoint is one cell of a two-way sensitivity grid.
type GridPoint struct {
	X, Y, FairValue float64
}

// TwoWay runs the Cartesian product of two variables' ranges.
func TwoWay(base valuation.Input, eval Evaluator, setX, setY func(*valuation.Input, float64), xLow, xHigh float64, nx int, yLow, yHigh float64, ny int) []GridPoint {
	if nx < 2 {
		nx = 2
	}
	if ny < 2 {
		ny = 2
	}
	xs := linspace(xLow, xHigh, nx)
	ys := linspace(yLow, yHigh, ny)

	grid := make([]GridPoint, 0, nx*ny)
	for _, x := range xs {
		for _, y := range ys {
			in := base
			setX(&in, x)
			setY(&in, y)
			if fv := eval(in); fv != nil {
				grid = append(grid, GridPoint{X: x, Y: y, FairValue: *fv})
			}
		}
	}
	return grid
}

func linspace(low, high float64, n int) []float64 {
	out := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + step*float64(i)
	}
	return out
}

// TornadoRow is one variable's impact band, sorted by |impact| desc.
type TornadoRow struct {
	Variable string
	Low      float64
	High     float64
	Impact   float64
}

// Tornado computes, for each named variable, the fair value at
// base*(1-pct) and base*(1+pct), sorted by descending |impact|.
func Tornado(base valuation.Input, eval Evaluator, variables map[string]func(*valuation.Input, float64), baseValues map[string]float64, pct float64) []TornadoRow {
	rows := make([]TornadoRow, 0, len(variables))
	for name, setter := range variables {
		baseVal := baseValues[name]
		lowVal := baseVal * (1 - pct)
		highVal := baseVal * (1 + pct)

		inLow, inHigh := base, base
		setter(&inLow, lowVal)
		setter(&inHigh, highVal)

		lowFV := eval(inLow)
		highFV := eval(inHigh)
		if lowFV == nil || highFV == nil {
			continue
		}
		rows = append(rows, TornadoRow{Variable: name, Low: *lowFV, High: *highFV, Impact: *highFV - *lowFV})
	}
	sort.Slice(rows, func(i, j int) bool { return math.Abs(rows[i].Impact) > math.Abs(rows[j].Impact) })
	return rows
}

// DistributionKind enumerates the Monte Carlo sampling distributions.
type DistributionKind string

const (
	Normal     DistributionKind = "normal"
	Triangular DistributionKind = "triangular"
	Uniform    DistributionKind = "uniform"
)

// VariableDistribution binds a sampled variable to an Input setter and
// its distribution parameters.
type VariableDistribution struct {
	Name   string
	Kind   DistributionKind
	Mean   float64 // normal: mean; uniform: midpoint unused
	StdDev float64 // normal
	Low, High, Mode float64 // triangular/uniform
	Setter func(*valuation.Input, float64)
}

func (d VariableDistribution) sample(src *seededSource) float64 {
	switch d.Kind {
	case Normal:
		dist := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: src}
		return dist.Rand()
	case Triangular:
		dist := distuv.Triangle{Min: d.Low, Max: d.High, Mode: d.Mode, Src: src}
		return dist.Rand()
	default:
		dist := distuv.Uniform{Min: d.Low, Max: d.High, Src: src}
		return dist.Rand()
	}
}

// MonteCarloStats is the output of a Monte Carlo run: descriptive
// statistics plus percentile and confidence-interval tables.
type MonteCarloStats struct {
	N           int
	Mean        float64
	Median      float64
	StdDev      float64
	Percentiles map[int]float64 // 5,10,25,50,75,90,95
	CI80        [2]float64
	CI90        [2]float64
}

const defaultBatchSize = 500

// MonteCarlo draws N independent samples from the given per-variable
// distributions, reruns the valuation for each, and summarises the
// resulting fair-value distribution. RNG is seeded for reproducibility
// (testable property 1/S6): the same seed and N always produce the same
// percentile table. Batches yield to ctx between chunks and run on a
// bounded worker pool, never blocking the caller's I/O loop.
func MonteCarlo(ctx context.Context, base valuation.Input, eval Evaluator, distributions []VariableDistribution, n int, seed uint64, workers int) (MonteCarloStats, error) {
	if n <= 0 {
		n = 10000
	}
	if workers <= 0 {
		workers = 4
	}

	results := make([]float64, 0, n)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for start := 0; start < n; start += defaultBatchSize {
		start := start
		end := start + defaultBatchSize
		if end > n {
			end = n
		}
		batchSeed := seed + uint64(start) // deterministic per-batch stream, still reproducible for fixed seed+N
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			src := newSeededSource(batchSeed)
			batch := make([]float64, 0, end-start)
			for i := start; i < end; i++ {
				in := base
				for _, d := range distributions {
					d.Setter(&in, d.sample(src))
				}
				if fv := eval(in); fv != nil {
					batch = append(batch, *fv)
				}
			}

			mu.Lock()
			results = append(results, batch...)
			mu.Unlock()

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return MonteCarloStats{}, err
	}

	return summarise(results), nil
}

func summarise(values []float64) MonteCarloStats {
	if len(values) == 0 {
		return MonteCarloStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var mean float64
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	percentiles := map[int]float64{}
	for _, p := range []int{5, 10, 25, 50, 75, 90, 95} {
		percentiles[p] = percentile(sorted, float64(p)/100)
	}

	return MonteCarloStats{
		N: len(sorted), Mean: mean, Median: percentiles[50], StdDev: math.Sqrt(variance),
		Percentiles: percentiles,
		CI80:        [2]float64{percentile(sorted, 0.10), percentile(sorted, 0.90)},
		CI90:        [2]float64{percentile(sorted, 0.05), percentile(sorted, 0.95)},
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
