package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// WithTx runs fn inside a single database transaction. The transaction is
// made available to repositories through the context (see TxFromContext),
// so every store call made by fn shares the same atomic unit. A nil error
// commits; any error or panic rolls back fully.
//
// Regeneration and booking each run inside one WithTx call, which is what
// keeps them all-or-nothing across multiple server instances: isolation is
// enforced by the database, not by in-process locks.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TxRunner abstracts transaction execution so services can be exercised in
// tests without a live pool.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolRunner runs each InTx call as one transaction on a pgxpool.Pool.
type PoolRunner struct {
	pool *pgxpool.Pool
}

func NewPoolRunner(pool *pgxpool.Pool) *PoolRunner {
	return &PoolRunner{pool: pool}
}

func (r *PoolRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return retrySerializationFailures(func() error {
		return WithTx(ctx, r.pool, fn)
	})
}

// maxTxAttempts bounds how often a conflicting transaction is replayed
// before its error is surfaced to the caller.
const maxTxAttempts = 3

// retrySerializationFailures replays run when it fails with a retryable
// transaction conflict. Any other error returns immediately.
func retrySerializationFailures(run func() error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = run()
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
	}
	return err
}

// TxFromContext returns the enclosing transaction started by WithTx, or nil
// when the caller is not running inside one.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// IsSerializationFailure reports whether err is a transaction conflict that
// is safe to retry (serialization failure or deadlock).
func IsSerializationFailure(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		code := pgErr.SQLState()
		return code == "40001" || code == "40P01"
	}
	return false
}
