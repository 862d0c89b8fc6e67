package service

import (
	"context"

	"order-exporter/internal/orderexporter/journal"
)

// Store persists one state blob per storage key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Clear(ctx context.Context, key string) error
}

type JournalWriter interface {
	Append(ctx context.Context, r journal.MergeRecord) error
}
