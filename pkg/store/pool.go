// Package store is the pgx-backed persistence layer: append-only
// repositories for predictions, outcomes, weight vectors, and industry
// profiles, plus upsert repositories for the derived ratio/trend/score
// snapshots. Grounded on
// y437li-agentic_valuation/pkg/core/store/db.go and analysis_repo.go's
// pgxpool usage, but the pool itself is owned by pkg/core/registry
// rather than a package-level sync.Once so it can be created, swapped,
// and shut down per-process instead of once per binary lifetime.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool parses dsn and opens a connection pool. Callers are
// responsible for closing it (via registry.Shutdown).
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
