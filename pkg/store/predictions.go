package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fundamental_engine/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PredictionRepo is the append-only log of ensemble valuations and
// their eventual realised outcomes.
type PredictionRepo struct {
	pool *pgxpool.Pool
}

func NewPredictionRepo(pool *pgxpool.Pool) *PredictionRepo {
	return &PredictionRepo{pool: pool}
}

// InsertPrediction writes a new row; Predictions are never updated.
func (r *PredictionRepo) InsertPrediction(ctx context.Context, tenantID string, p models.Prediction) error {
	const query = `
		INSERT INTO predictions (id, tenant_id, company_id, issued_at, horizon_days, fair_value, confidence, weights_digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, p.ID, tenantID, p.CompanyID, p.IssuedAt, p.HorizonDays, p.FairValue, p.Confidence, p.WeightsDigest)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// InsertOutcome writes exactly one Outcome per Prediction; a unique
// constraint on prediction_id enforces the happens-before/at-most-once
// guarantee at the database level.
func (r *PredictionRepo) InsertOutcome(ctx context.Context, o models.Outcome) error {
	contributions, err := json.Marshal(o.ModelContributions)
	if err != nil {
		return fmt.Errorf("marshal model contributions: %w", err)
	}
	const query = `
		INSERT INTO outcomes (prediction_id, actual_price, abs_pct_error, model_contributions, reconciled_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.pool.Exec(ctx, query, o.PredictionID, o.ActualPrice, o.AbsPctError, contributions, o.ReconciledAt)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// PendingReconciliation returns predictions whose horizon has elapsed
// but that have no matching outcome yet, for the daily reconciler.
func (r *PredictionRepo) PendingReconciliation(ctx context.Context, asOf time.Time) ([]models.Prediction, error) {
	const query = `
		SELECT p.id, p.company_id, p.issued_at, p.horizon_days, p.fair_value, p.confidence, p.weights_digest
		FROM predictions p
		LEFT JOIN outcomes o ON o.prediction_id = p.id
		WHERE o.prediction_id IS NULL
		  AND p.issued_at + make_interval(days => p.horizon_days) <= $1`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("query pending reconciliation: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

// PredictionOutcomePair is one (Prediction, Outcome) row joined for
// training windows.
type PredictionOutcomePair struct {
	Prediction models.Prediction
	Outcome    models.Outcome
}

// Window returns the most recent `days` worth of (Prediction, Outcome)
// pairs for a tenant/scope, consumed by the WeightTrainer and
// IndustryTrainer.
func (r *PredictionRepo) Window(ctx context.Context, tenantID, scope string, days int) ([]PredictionOutcomePair, error) {
	const query = `
		SELECT p.id, p.company_id, p.issued_at, p.horizon_days, p.fair_value, p.confidence, p.weights_digest,
		       o.actual_price, o.abs_pct_error, o.model_contributions, o.reconciled_at
		FROM predictions p
		JOIN outcomes o ON o.prediction_id = p.id
		WHERE p.tenant_id = $1
		  AND p.issued_at >= now() - make_interval(days => $2)
		  AND ($3 = '' OR p.company_id = ANY (SELECT company_id FROM company_industry WHERE industry = $3))
		ORDER BY p.issued_at ASC`
	rows, err := r.pool.Query(ctx, query, tenantID, days, scopeIndustry(scope))
	if err != nil {
		return nil, fmt.Errorf("query prediction window: %w", err)
	}
	defer rows.Close()

	var out []PredictionOutcomePair
	for rows.Next() {
		var pair PredictionOutcomePair
		var contributions []byte
		if err := rows.Scan(
			&pair.Prediction.ID, &pair.Prediction.CompanyID, &pair.Prediction.IssuedAt,
			&pair.Prediction.HorizonDays, &pair.Prediction.FairValue, &pair.Prediction.Confidence, &pair.Prediction.WeightsDigest,
			&pair.Outcome.ActualPrice, &pair.Outcome.AbsPctError, &contributions, &pair.Outcome.ReconciledAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction/outcome pair: %w", err)
		}
		pair.Outcome.PredictionID = pair.Prediction.ID
		if len(contributions) > 0 {
			if err := json.Unmarshal(contributions, &pair.Outcome.ModelContributions); err != nil {
				return nil, fmt.Errorf("unmarshal model contributions: %w", err)
			}
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}

// scopeIndustry extracts the industry name from a "industry:<name>"
// scope string, or "" for "global".
func scopeIndustry(scope string) string {
	const prefix = "industry:"
	if len(scope) > len(prefix) && scope[:len(prefix)] == prefix {
		return scope[len(prefix):]
	}
	return ""
}

func scanPredictions(rows pgx.Rows) ([]models.Prediction, error) {
	var out []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.IssuedAt, &p.HorizonDays, &p.FairValue, &p.Confidence, &p.WeightsDigest); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
