package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool

	// purchaseCommitHook runs inside the purchase transaction right after the
	// stock decrement. Tests use it to inject failures; nil in production.
	purchaseCommitHook func(pgx.Tx) error
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func nullString(val string) interface{} {
	if val == "" {
		return nil
	}
	return val
}

func nullInt64Ptr(val *int64) interface{} {
	if val == nil {
		return nil
	}
	return *val
}
