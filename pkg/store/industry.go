package store

import (
	"context"
	"fmt"

	"fundamental_engine/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IndustryProfileRepo is the append-only log of industry training
// state consumed by IndustryTrainer's transfer-learning lookup.
type IndustryProfileRepo struct {
	pool *pgxpool.Pool
}

func NewIndustryProfileRepo(pool *pgxpool.Pool) *IndustryProfileRepo {
	return &IndustryProfileRepo{pool: pool}
}

// Insert appends a new profile snapshot for an industry.
func (r *IndustryProfileRepo) Insert(ctx context.Context, p models.IndustryProfile) error {
	bestModels := make([]string, len(p.BestModels))
	for i, m := range p.BestModels {
		bestModels[i] = string(m)
	}
	const query = `
		INSERT INTO industry_profiles (industry, sample_count, centroid_feature_vector, best_models, last_trained)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, p.Industry, p.SampleCount, p.CentroidFeatureVector, bestModels, p.LastTrained)
	if err != nil {
		return fmt.Errorf("insert industry profile: %w", err)
	}
	return nil
}

// Latest returns the most recent profile for each industry, used to
// build IndustryTrainer's peer set.
func (r *IndustryProfileRepo) Latest(ctx context.Context) ([]models.IndustryProfile, error) {
	const query = `
		SELECT DISTINCT ON (industry) industry, sample_count, centroid_feature_vector, best_models, last_trained
		FROM industry_profiles
		ORDER BY industry, last_trained DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest industry profiles: %w", err)
	}
	defer rows.Close()

	var out []models.IndustryProfile
	for rows.Next() {
		var p models.IndustryProfile
		var bestModels []string
		if err := rows.Scan(&p.Industry, &p.SampleCount, &p.CentroidFeatureVector, &bestModels, &p.LastTrained); err != nil {
			return nil, fmt.Errorf("scan industry profile: %w", err)
		}
		for _, m := range bestModels {
			p.BestModels = append(p.BestModels, models.ModelID(m))
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
