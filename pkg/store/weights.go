package store

import (
	"context"
	"errors"
	"fmt"

	"fundamental_engine/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WeightVectorRepo is the append-only WeightVector log. Activation is
// a two-step write (insert the new row as active, retire the previous
// one) performed inside a single transaction so a reader never
// observes two active rows for the same owner.
type WeightVectorRepo struct {
	pool *pgxpool.Pool
}

func NewWeightVectorRepo(pool *pgxpool.Pool) *WeightVectorRepo {
	return &WeightVectorRepo{pool: pool}
}

// Activate retires the current active vector for (ownerKind, ownerID),
// if any, and inserts v as the new active row.
func (r *WeightVectorRepo) Activate(ctx context.Context, v models.WeightVector) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin weight activation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const retire = `
		UPDATE weight_vectors
		SET deployed = 'retired', effective_to = $3
		WHERE owner_kind = $1 AND owner_id = $2 AND deployed = 'active'`
	if _, err := tx.Exec(ctx, retire, v.OwnerKind, v.OwnerID, v.EffectiveFrom); err != nil {
		return fmt.Errorf("retire previous active vector: %w", err)
	}

	const insert = `
		INSERT INTO weight_vectors (id, owner_kind, owner_id, effective_from, model_weights, source, train_mape, backtest_mape, cv_std, sample_count, ml_confidence, deployed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	weights := v.ModelWeights[:]
	if _, err := tx.Exec(ctx, insert,
		v.ID, v.OwnerKind, v.OwnerID, v.EffectiveFrom, weights, v.Source,
		v.Metrics.TrainMAPE, v.Metrics.BacktestMAPE, v.Metrics.CVStd, v.Metrics.SampleCount,
		v.MLConfidence, v.Deployed,
	); err != nil {
		return fmt.Errorf("insert weight vector: %w", err)
	}

	return tx.Commit(ctx)
}

// InsertCandidate appends a non-active (candidate/shadow) row without
// touching the active one.
func (r *WeightVectorRepo) InsertCandidate(ctx context.Context, v models.WeightVector) error {
	const insert = `
		INSERT INTO weight_vectors (id, owner_kind, owner_id, effective_from, model_weights, source, train_mape, backtest_mape, cv_std, sample_count, ml_confidence, deployed, reject_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	weights := v.ModelWeights[:]
	_, err := r.pool.Exec(ctx, insert,
		v.ID, v.OwnerKind, v.OwnerID, v.EffectiveFrom, weights, v.Source,
		v.Metrics.TrainMAPE, v.Metrics.BacktestMAPE, v.Metrics.CVStd, v.Metrics.SampleCount,
		v.MLConfidence, v.Deployed, v.RejectReason,
	)
	if err != nil {
		return fmt.Errorf("insert candidate weight vector: %w", err)
	}
	return nil
}

// Active returns the active WeightVector for exactly one (ownerKind,
// ownerID), or nil when that owner has none. It applies no precedence
// across owners; the company-override > industry-active > global-active
// > default precedence is implemented by pkg/core/weights.
func (r *WeightVectorRepo) Active(ctx context.Context, ownerKind models.OwnerKind, ownerID string) (*models.WeightVector, error) {
	const query = `
		SELECT id, owner_kind, owner_id, effective_from, model_weights, source, train_mape, backtest_mape, cv_std, sample_count, ml_confidence, deployed
		FROM weight_vectors
		WHERE owner_kind = $1 AND owner_id = $2 AND deployed = 'active'
		ORDER BY effective_from DESC
		LIMIT 1`
	row := r.pool.QueryRow(ctx, query, ownerKind, ownerID)

	var v models.WeightVector
	var weights []float64
	if err := row.Scan(
		&v.ID, &v.OwnerKind, &v.OwnerID, &v.EffectiveFrom, &weights, &v.Source,
		&v.Metrics.TrainMAPE, &v.Metrics.BacktestMAPE, &v.Metrics.CVStd, &v.Metrics.SampleCount,
		&v.MLConfidence, &v.Deployed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active weight vector: %w", err)
	}
	copy(v.ModelWeights[:], weights)
	return &v, nil
}
