package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withTransaction runs fn with queries bound to a new transaction.
func withTransaction(ctx context.Context, pool *pgxpool.Pool, q *db.Queries, fn func(qtx *db.Queries) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTransactionBegin, err)
	}
	qtx := q.WithTx(tx)

	err = fn(qtx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %w (cause: %w)", apperrors.ErrTransactionRollback, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTransactionCommit, err)
	}

	return nil
}
