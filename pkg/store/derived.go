package store

import (
	"context"
	"encoding/json"
	"fmt"

	"fundamental_engine/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DerivedRepo upserts the derived, re-computable snapshots (ratios,
// trend metrics, composite scores) keyed on (company_id, as_of): a
// re-run for the same key replaces the row rather than appending, since
// these are deterministic functions of the source statements rather
// than an audit trail.
type DerivedRepo struct {
	pool *pgxpool.Pool
}

func NewDerivedRepo(pool *pgxpool.Pool) *DerivedRepo {
	return &DerivedRepo{pool: pool}
}

func (r *DerivedRepo) UpsertRatioSet(ctx context.Context, rs models.RatioSet) error {
	blob, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshal ratio set: %w", err)
	}
	const query = `
		INSERT INTO ratio_sets (company_id, as_of, ratios_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, as_of) DO UPDATE SET ratios_json = EXCLUDED.ratios_json`
	_, err = r.pool.Exec(ctx, query, rs.CompanyID, rs.AsOf, blob)
	if err != nil {
		return fmt.Errorf("upsert ratio set: %w", err)
	}
	return nil
}

func (r *DerivedRepo) UpsertTrendMetrics(ctx context.Context, tm models.TrendMetrics) error {
	blob, err := json.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshal trend metrics: %w", err)
	}
	const query = `
		INSERT INTO trend_metrics (company_id, metric_name, as_of, metrics_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, metric_name, as_of) DO UPDATE SET metrics_json = EXCLUDED.metrics_json`
	_, err = r.pool.Exec(ctx, query, tm.CompanyID, tm.MetricName, tm.AsOf, blob)
	if err != nil {
		return fmt.Errorf("upsert trend metrics: %w", err)
	}
	return nil
}

func (r *DerivedRepo) UpsertCompositeScore(ctx context.Context, cs models.CompositeScore) error {
	blob, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal composite score: %w", err)
	}
	const query = `
		INSERT INTO composite_scores (company_id, as_of, score_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, as_of) DO UPDATE SET score_json = EXCLUDED.score_json`
	_, err = r.pool.Exec(ctx, query, cs.CompanyID, cs.AsOf, blob)
	if err != nil {
		return fmt.Errorf("upsert composite score: %w", err)
	}
	return nil
}

// RankScope returns the most recent composite score per company within
// a scope (industry filter optional), used by scoring.Rank.
func (r *DerivedRepo) RankScope(ctx context.Context, industry string) (map[string]models.CompositeScore, error) {
	const query = `
		SELECT DISTINCT ON (cs.company_id) cs.company_id, cs.score_json
		FROM composite_scores cs
		JOIN companies c ON c.id = cs.company_id
		WHERE $1 = '' OR c.industry = $1
		ORDER BY cs.company_id, cs.as_of DESC`
	rows, err := r.pool.Query(ctx, query, industry)
	if err != nil {
		return nil, fmt.Errorf("query rank scope: %w", err)
	}
	defer rows.Close()

	out := map[string]models.CompositeScore{}
	for rows.Next() {
		var companyID string
		var blob []byte
		if err := rows.Scan(&companyID, &blob); err != nil {
			return nil, fmt.Errorf("scan composite score row: %w", err)
		}
		var cs models.CompositeScore
		if err := json.Unmarshal(blob, &cs); err != nil {
			return nil, fmt.Errorf("unmarshal composite score: %w", err)
		}
		out[companyID] = cs
	}
	return out, rows.Err()
}
