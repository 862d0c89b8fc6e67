package dbstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"order-exporter/internal/orderexporter/data"
)

const driverName = "sqlite"

const (
	setupDatabaseRequest = `
		create table if not exists capture_states
		(
			key        text primary key,
			blob       text not null,
			updated_at text not null default (datetime('now'))
		);`

	selectStateRequest = `select blob from capture_states where key = ?;`

	upsertStateRequest = `
		insert into capture_states (key, blob, updated_at)
		values (?, ?, datetime('now'))
		on conflict (key) do update
			set blob = excluded.blob,
			    updated_at = excluded.updated_at;`

	deleteStateRequest = `delete from capture_states where key = ?;`
)

type DBFactory interface {
	Create() (*sql.DB, error)
}

// SQLiteFactory opens a file-backed sqlite database with the pure-Go driver.
type SQLiteFactory struct {
	path string
}

func NewSQLiteFactory(path string) *SQLiteFactory {
	return &SQLiteFactory{path: path}
}

func (f *SQLiteFactory) Create() (*sql.DB, error) {
	db, err := sql.Open(driverName, f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", f.path, err)
	}
	// one writer at a time, sqlite locks the whole file anyway
	db.SetMaxOpenConns(1)
	return db, nil
}

// DBStorage keeps state blobs in a sqlite table.
type DBStorage struct {
	db *sql.DB
}

func New(dbFactory DBFactory) (*DBStorage, error) {
	db, err := dbFactory.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	_, err = db.Exec(setupDatabaseRequest)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to setup database: %w", err), db.Close())
	}
	return &DBStorage{
		db: db,
	}, nil
}

func (s *DBStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (s *DBStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, selectStateRequest, key).Scan(&blob)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, data.ErrStateNotFound
		default:
			return nil, fmt.Errorf("failed to select state %s: %w", key, err)
		}
	}
	return []byte(blob), nil
}

func (s *DBStorage) Save(ctx context.Context, key string, blob []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertStateRequest, key, string(blob)); err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	return nil
}

func (s *DBStorage) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteStateRequest, key); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}
