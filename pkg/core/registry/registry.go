// Package registry encapsulates every piece of global mutable state the
// engine needs — the database pool, the cron scheduler, the active
// weight cache, and the upstream circuit breakers — behind a single
// Registry value with no package-level init() side effects, so tests
// and multiple engine instances in the same process never share state
// through a hidden singleton. Generalised from a package-level
// sync.Once to an owned struct.
package registry

import (
	"context"
	"fmt"
	"time"

	"fundamental_engine/pkg/config"
	"fundamental_engine/pkg/core/ensemble"
	"fundamental_engine/pkg/core/weights"
	"fundamental_engine/pkg/models"
	"fundamental_engine/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// Registry owns every long-lived resource the engine needs.
type Registry struct {
	Config *config.Config
	Pool   *pgxpool.Pool

	Predictions *store.PredictionRepo
	WeightVecs  *store.WeightVectorRepo
	Industries  *store.IndustryProfileRepo
	Derived     *store.DerivedRepo

	WeightCache *weights.Cache
	Breaker     *Breaker

	engine *ensemble.Engine
	cron   *cron.Cron
}

// Init opens the database pool, builds every repository, seeds the
// weight cache with the compiled-in default vector, and returns a ready
// Registry. It does not start the scheduler; call StartScheduler once
// jobs are registered.
func Init(ctx context.Context, cfg *config.Config, defaultWeights models.WeightVector) (*Registry, error) {
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}

	r := &Registry{
		Config:      cfg,
		Pool:        pool,
		Predictions: store.NewPredictionRepo(pool),
		WeightVecs:  store.NewWeightVectorRepo(pool),
		Industries:  store.NewIndustryProfileRepo(pool),
		Derived:     store.NewDerivedRepo(pool),
		WeightCache: weights.NewCache(defaultWeights),
		Breaker:     NewBreaker(cfg.MaxUpstreamRetries, cfg.CircuitCoolingPeriod),
		cron:        cron.New(cron.WithSeconds()),
	}

	r.engine = ensemble.NewEngine(func(tenantID, companyID, industry string) *models.WeightVector {
		_ = tenantID // weight resolution is not yet tenant-scoped; reserved for a future per-tenant override tier
		v, ok := r.WeightCache.ResolveTrained(companyID, industry)
		if !ok {
			return nil // nothing trained for this scope: let EnsembleNet produce weights instead
		}
		return v
	})

	var defaultArray [8]float64
	for i, m := range models.AllModels {
		defaultArray[i] = ensemble.DefaultWeights[m]
	}
	r.engine.SetParams(ensemble.NewBaselineParams(ensemble.FeatureVectorSize, defaultArray))

	return r, nil
}

// Engine returns the valuation invocation surface: an ensemble.Engine
// wired to resolve model weights through this Registry's WeightCache,
// honouring the company > industry > global precedence, and falling
// back to EnsembleNet (never the static default table directly) when
// nothing has been trained for a scope. Callers outside the scheduled
// jobs (another in-process service embedding this module) use this as
// their single entry point into a company valuation.
func (r *Registry) Engine() *ensemble.Engine {
	return r.engine
}

// Schedule registers a cron job (seconds-resolution expression) and
// returns its entry ID so callers can remove it later if needed.
func (r *Registry) Schedule(spec string, job func()) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, job)
}

// StartScheduler starts the cron loop in the background.
func (r *Registry) StartScheduler() {
	r.cron.Start()
}

// Shutdown stops the scheduler (waiting for in-flight jobs to finish,
// bounded by ctx) and closes the database pool.
func (r *Registry) Shutdown(ctx context.Context) error {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.Config.TrainingDeadline):
	}
	r.Pool.Close()
	return nil
}
