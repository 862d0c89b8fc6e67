package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"order-exporter/internal/orderexporter/data"
)

const keyPrefix = "capture-state/"

// PebbleStore keeps state blobs in an embedded pebble database.
type PebbleStore struct {
	db *pebble.DB
}

func New(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (p *PebbleStore) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("pebble close: %w", err)
	}
	return nil
}

func (p *PebbleStore) Load(_ context.Context, key string) ([]byte, error) {
	v, closer, err := p.db.Get(storageKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, data.ErrStateNotFound
		}
		return nil, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

// Save replaces the blob and syncs the WAL, so a saved state survives a crash.
func (p *PebbleStore) Save(_ context.Context, key string, blob []byte) error {
	if err := p.db.Set(storageKey(key), blob, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

func (p *PebbleStore) Clear(_ context.Context, key string) error {
	if err := p.db.Delete(storageKey(key), pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete %s: %w", key, err)
	}
	return nil
}

func storageKey(key string) []byte {
	return []byte(keyPrefix + key)
}
