package pgxstorage

import (
	"context"
	"fmt"
)

type TransactionsManager struct {
	storage *DBStorage
}

func NewTransactionsManager(storage *DBStorage) *TransactionsManager {
	return &TransactionsManager{
		storage: storage,
	}
}

// DoWithTransaction runs f in one transaction. Storage calls made with the
// context passed to f join it. Nested calls reuse the outer transaction.
func (tm *TransactionsManager) DoWithTransaction(
	ctx context.Context,
	f func(ctx context.Context) error,
) error {
	if _, err := getTransaction(ctx); err == nil {
		return f(ctx)
	}
	ctxWithTransaction, tx, err := tm.storage.withTransaction(ctx)
	if err != nil {
		return err
	}
	// rollback must run even when ctx is already cancelled
	rollbackCtx := context.WithoutCancel(ctx)
	if err = f(ctxWithTransaction); err != nil {
		if rollbackErr := tx.Rollback(rollbackCtx); rollbackErr != nil {
			return fmt.Errorf("transaction rollback failed: %w, rollback caused by %w", rollbackErr, err)
		}
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		if rollbackErr := tx.Rollback(rollbackCtx); rollbackErr != nil {
			return fmt.Errorf("transaction rollback failed: %w, rollback caused by %w", rollbackErr, err)
		}
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}
