package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"account-core/internal/interfaces"
)

// BeginTransaction begins a new database transaction on the given pool.
func BeginTransaction(ctx context.Context, pool interfaces.PgxPoolIface) (pgx.Tx, error) {
	LogMessageWithFields(ctx, "debug", "Beginning transaction...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error beginning transaction", err)
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return tx, nil
}

// RollbackTransaction rolls back the given transaction.
// Errors for transactions that are already closed are ignored.
func RollbackTransaction(ctx context.Context, tx pgx.Tx) {
	LogMessageWithFields(ctx, "debug", "Rolling back transaction...")

	if err := tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		LogMessageWithFieldsAndError(ctx, "error", "Error rolling back transaction", err)
		return
	}
	LogMessageWithFields(ctx, "debug", "Transaction rolled back")
}

// CommitTransaction attempts to commit the given transaction.
func CommitTransaction(ctx context.Context, tx pgx.Tx) error {
	LogMessageWithFields(ctx, "debug", "Committing transaction...")

	if err := tx.Commit(ctx); err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error committing transaction", err)
		return fmt.Errorf("commit transaction: %w", err)
	}

	LogMessageWithFields(ctx, "debug", "Transaction committed")
	return nil
}

// ReadSnapshot is a read-only transaction in which every statement sees the same snapshot.
var ReadSnapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// RunInReadTransaction executes fn inside a ReadSnapshot transaction, so several reads
// agree with each other even while other sessions write.
func RunInReadTransaction(ctx context.Context, pool interfaces.PgxPoolIface, fn func(tx pgx.Tx) error) error {
	LogMessageWithFields(ctx, "debug", "Beginning read transaction...")

	tx, err := pool.BeginTx(ctx, ReadSnapshot)
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error beginning read transaction", err)
		return fmt.Errorf("begin read transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		RollbackTransaction(ctx, tx)
		return err
	}

	return CommitTransaction(ctx, tx)
}

// RunInTransaction executes fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise; fn's error is returned unchanged.
func RunInTransaction(ctx context.Context, pool interfaces.PgxPoolIface, fn func(tx pgx.Tx) error) error {
	tx, err := BeginTransaction(ctx, pool)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		RollbackTransaction(ctx, tx)
		return err
	}

	return CommitTransaction(ctx, tx)
}
