package training

import (
	"math"
	"time"

	"fundamental_engine/pkg/models"
)

// IndustryContext is everything IndustryTrainer needs about one industry
// beyond its own prediction window: its profile and the other profiles
// it might transfer from.
type IndustryContext struct {
	Profile      models.IndustryProfile
	Peers        []models.IndustryProfile
	PeerVectors  map[string]*models.WeightVector // industry name -> active vector
	MetaLearner  *models.WeightVector            // global meta-learner output, if refreshed
}

// SimilarityThreshold is the cosine-similarity cutoff for industry
// transfer learning.
const SimilarityThreshold = 0.70

// RunIndustry trains (or transfers, or falls back to the meta-learner
// for) a single industry's weight vector. Precedence, per the harmonised
// Open-Question decision: an in-industry trained vector always wins;
// transfer is tried only when the industry itself lacks enough samples;
// the meta-learner only fills the remaining gap and never overrides an
// industry-level vector.
func RunIndustry(cfg Config, window Window, active *models.WeightVector, ctx IndustryContext, now time.Time) (*models.WeightVector, error) {
	if len(window.Samples) >= cfg.MinSamples {
		return Run(cfg, window, active, now)
	}

	if peer, industry, sim := mostSimilarPeer(ctx.Profile, ctx.Peers, ctx.PeerVectors); peer != nil && sim >= SimilarityThreshold {
		transferred := *peer
		transferred.OwnerKind = models.OwnerIndustry
		transferred.OwnerID = window.Scope
		transferred.Source = models.SourceTransferred
		transferred.MLConfidence = peer.MLConfidence * 0.8
		transferred.Deployed = models.DeployActive
		transferred.EffectiveFrom = now
		transferred.Metrics.SampleCount = len(window.Samples)
		_ = industry
		return &transferred, nil
	}

	if ctx.MetaLearner != nil {
		fromMeta := *ctx.MetaLearner
		fromMeta.OwnerKind = models.OwnerIndustry
		fromMeta.OwnerID = window.Scope
		fromMeta.Source = models.SourceMeta
		fromMeta.MLConfidence = ctx.MetaLearner.MLConfidence * 0.7
		fromMeta.Deployed = models.DeployActive
		fromMeta.EffectiveFrom = now
		fromMeta.Metrics.SampleCount = len(window.Samples)
		return &fromMeta, nil
	}

	return nil, nil // no training possible yet; caller keeps existing active vector (or default)
}

func mostSimilarPeer(target models.IndustryProfile, peers []models.IndustryProfile, vectors map[string]*models.WeightVector) (*models.WeightVector, string, float64) {
	var best *models.WeightVector
	var bestIndustry string
	bestSim := -1.0
	for _, p := range peers {
		if p.Industry == target.Industry {
			continue
		}
		sim := cosineSimilarity(target.CentroidFeatureVector, p.CentroidFeatureVector)
		if sim > bestSim {
			if v, ok := vectors[p.Industry]; ok && v != nil {
				best, bestIndustry, bestSim = v, p.Industry, sim
			}
		}
	}
	return best, bestIndustry, bestSim
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
