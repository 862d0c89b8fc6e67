package dbrepository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryValue(ctx context.Context, query string, args []any, dest []any) error
}

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

// DBRepository stores state blobs in postgres and keeps every saved revision.
type DBRepository struct {
	storage            DBStorage
	transactionManager TransactionManager
	logger             *logging.ZapLogger
}

func New(storage DBStorage, transactionManager TransactionManager, logger *logging.ZapLogger) *DBRepository {
	return &DBRepository{
		storage:            storage,
		transactionManager: transactionManager,
		logger:             logger,
	}
}

//go:embed sql/select_state.sql
var selectStateQuery string

func (db *DBRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var blob string
	err := db.storage.QueryValue(ctx, selectStateQuery, []any{key}, []any{&blob})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, data.ErrStateNotFound
		default:
			return nil, handleSQLError(err)
		}
	}
	return []byte(blob), nil
}

//go:embed sql/upsert_state.sql
var upsertStateQuery string

//go:embed sql/insert_state_history.sql
var insertStateHistoryQuery string

func (db *DBRepository) Save(ctx context.Context, key string, blob []byte) error {
	return db.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		var revision int64
		err := db.storage.QueryValue(ctx, upsertStateQuery, []any{key, string(blob)}, []any{&revision})
		if err != nil {
			return handleSQLError(err)
		}
		_, err = db.storage.Exec(ctx, insertStateHistoryQuery, key, revision, string(blob))
		if err != nil {
			return handleSQLError(err)
		}
		db.logger.DebugCtx(ctx, "state saved", zap.String("key", key), zap.Int64("revision", revision))
		return nil
	})
}

//go:embed sql/delete_state.sql
var deleteStateQuery string

func (db *DBRepository) Clear(ctx context.Context, key string) error {
	_, err := db.storage.Exec(ctx, deleteStateQuery, key)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

func handleSQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres error %s: %w", pgErr.Code, err)
	}
	return err
}
