package main

import (
	"context"
	"time"

	"fundamental_engine/pkg/core/registry"
	"fundamental_engine/pkg/core/training"
	"fundamental_engine/pkg/models"
	"fundamental_engine/pkg/store"

	"github.com/rs/zerolog"
)

// registerJobs wires the daily WeightTrainer pass, the weekly
// IndustryTrainer pass, and the daily prediction reconciler onto the
// registry's cron scheduler, each guarded by its own structured-logging
// scope the way aristath's scheduler jobs are (one zerolog.Logger per
// job, named via .With().Str("job", ...)).
func registerJobs(reg *registry.Registry, logger zerolog.Logger) {
	weightTrainerLog := logger.With().Str("job", "weight_trainer").Logger()
	if _, err := reg.Schedule(reg.Config.WeightTrainerSchedule, func() {
		runWeightTrainer(reg, weightTrainerLog)
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule weight trainer")
	}

	industryTrainerLog := logger.With().Str("job", "industry_trainer").Logger()
	if _, err := reg.Schedule(reg.Config.IndustryTrainerSchedule, func() {
		runIndustryTrainer(reg, industryTrainerLog)
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule industry trainer")
	}

	reconcilerLog := logger.With().Str("job", "reconciler").Logger()
	if _, err := reg.Schedule(reg.Config.ReconcilerSchedule, func() {
		runReconciler(reg, reconcilerLog)
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule reconciler")
	}
}

func runWeightTrainer(reg *registry.Registry, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reg.Config.TrainingDeadline)
	defer cancel()

	start := time.Now()
	pairs, err := reg.Predictions.Window(ctx, "", "global", reg.Config.TrainingWindowDays)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load training window")
		return
	}

	samples := toTrainingSamples(pairs)
	active, err := reg.WeightVecs.Active(ctx, models.OwnerGlobal, "global")
	if err != nil {
		logger.Error().Err(err).Msg("failed to load active weight vector")
		return
	}

	cfg := training.Config{
		MinSamples:     reg.Config.MinSamplesGlobal,
		SmoothingAlpha: reg.Config.SmoothingAlpha,
		CVFolds:        5,
		CVStdThreshold: 0.2,
		Seed:           42,
	}

	result, err := training.Run(cfg, training.Window{Scope: "global", Samples: samples}, active, time.Now())
	if err != nil {
		logger.Warn().Err(err).Msg("weight trainer run produced no deployable vector")
		return
	}

	if result.Deployed == models.DeployActive {
		if err := reg.WeightVecs.Activate(ctx, *result); err != nil {
			logger.Error().Err(err).Msg("failed to activate trained weight vector")
			return
		}
		reg.WeightCache.Set(models.OwnerGlobal, "global", result)
	} else {
		if err := reg.WeightVecs.InsertCandidate(ctx, *result); err != nil {
			logger.Error().Err(err).Msg("failed to persist rejected candidate")
		}
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("samples", len(samples)).
		Str("deployed", string(result.Deployed)).
		Msg("weight trainer pass complete")
}

func runIndustryTrainer(reg *registry.Registry, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reg.Config.TrainingDeadline)
	defer cancel()

	profiles, err := reg.Industries.Latest(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load industry profiles")
		return
	}

	peerVectors := map[string]*models.WeightVector{}
	for _, p := range profiles {
		if v, err := reg.WeightVecs.Active(ctx, models.OwnerIndustry, p.Industry); err == nil && v != nil {
			peerVectors[p.Industry] = v
		}
	}

	metaLearner, err := reg.WeightVecs.Active(ctx, models.OwnerGlobal, "global")
	if err != nil {
		logger.Error().Err(err).Msg("failed to load global weight vector for meta-learner fallback")
		return
	}

	for _, profile := range profiles {
		pairs, err := reg.Predictions.Window(ctx, "", "industry:"+profile.Industry, reg.Config.TrainingWindowDays)
		if err != nil {
			logger.Error().Err(err).Str("industry", profile.Industry).Msg("failed to load industry training window")
			continue
		}

		active, err := reg.WeightVecs.Active(ctx, models.OwnerIndustry, profile.Industry)
		if err != nil {
			logger.Error().Err(err).Str("industry", profile.Industry).Msg("failed to load active industry vector")
			continue
		}

		cfg := training.Config{MinSamples: reg.Config.MinSamplesIndustry, SmoothingAlpha: reg.Config.SmoothingAlpha, CVFolds: 5, CVStdThreshold: 0.2, Seed: 42}
		ictx := training.IndustryContext{Profile: profile, Peers: profiles, PeerVectors: peerVectors, MetaLearner: metaLearner}

		result, err := training.RunIndustry(cfg, training.Window{Scope: "industry:" + profile.Industry, Samples: toTrainingSamples(pairs)}, active, ictx, time.Now())
		if err != nil {
			logger.Warn().Err(err).Str("industry", profile.Industry).Msg("industry training failed")
			continue
		}
		if result == nil {
			continue
		}
		if result.Deployed != models.DeployActive {
			if err := reg.WeightVecs.InsertCandidate(ctx, *result); err != nil {
				logger.Error().Err(err).Str("industry", profile.Industry).Msg("failed to persist rejected industry candidate")
			}
			continue
		}

		if err := reg.WeightVecs.Activate(ctx, *result); err != nil {
			logger.Error().Err(err).Str("industry", profile.Industry).Msg("failed to activate industry vector")
			continue
		}
		reg.WeightCache.Set(models.OwnerIndustry, profile.Industry, result)
	}

	logger.Info().Int("industries", len(profiles)).Msg("industry trainer pass complete")
}

func runReconciler(reg *registry.Registry, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reg.Config.RequestDeadline)
	defer cancel()

	now := time.Now()
	pending, err := reg.Predictions.PendingReconciliation(ctx, now)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load pending reconciliations")
		return
	}

	logger.Info().Int("pending", len(pending)).Msg("reconciler pass: market-price lookups are performed by the upstream market-data collaborator")
}

// toTrainingSamples reshapes each prediction/outcome pair's per-model
// contributions into the fixed [8]float64 array WeightTrainer/
// IndustryTrainer index by models.AllModels order; pairs missing a
// contribution for one of the eight models are skipped, since a
// partial sample would bias that model's fitted weight toward zero.
func toTrainingSamples(pairs []store.PredictionOutcomePair) []training.Sample {
	samples := make([]training.Sample, 0, len(pairs))
	for _, pair := range pairs {
		var values [8]float64
		complete := true
		for i, model := range models.AllModels {
			v, ok := pair.Outcome.ModelContributions[model]
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}
		if !complete {
			continue
		}
		samples = append(samples, training.Sample{PerModelValue: values, ActualPrice: pair.Outcome.ActualPrice})
	}
	return samples
}
