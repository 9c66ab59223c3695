// Command engine is the wiring entrypoint for the valuation and
// scoring core: it loads configuration, opens the registry (database
// pool, repositories, weight cache, circuit breaker), registers the
// daily/weekly training and reconciliation jobs on a cron scheduler,
// and blocks until an interrupt signal arrives. There is no HTTP
// surface here — the core is invoked as a library by the tenancy/API
// layer, and this binary only drives the background jobs a deployment
// needs running continuously.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fundamental_engine/pkg/config"
	"fundamental_engine/pkg/core/ensemble"
	"fundamental_engine/pkg/core/registry"
	"fundamental_engine/pkg/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := log.With().Str("service", "fundamental-engine").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, err := registry.Init(ctx, cfg, defaultWeightVector())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise registry")
	}

	registerJobs(reg, logger)
	reg.StartScheduler()
	logger.Info().Msg("scheduler started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.TrainingDeadline)
	defer shutdownCancel()
	if err := reg.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}

// defaultWeightVector is the compiled-in fallback used when no
// WeightVector has ever been trained for a scope: the default weight
// table, ensemble.DefaultWeights, in models.AllModels order.
func defaultWeightVector() models.WeightVector {
	var w [8]float64
	for i, m := range models.AllModels {
		w[i] = ensemble.DefaultWeights[m]
	}
	return models.WeightVector{
		OwnerKind:    models.OwnerGlobal,
		OwnerID:      "global",
		ModelWeights: w,
		Source:       models.SourceDefault,
		Deployed:     models.DeployActive,
	}
}
