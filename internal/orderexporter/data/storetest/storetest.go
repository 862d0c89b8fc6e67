// Package storetest checks state store implementations against the same contract.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter/data"
)

type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Clear(ctx context.Context, key string) error
}

// Run exercises load, save, replace and clear semantics.
func Run(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, data.ErrStateNotFound)
	})

	t.Run("save replaces whole blob", func(t *testing.T) {
		first := []byte(`{"orders":{"b":1,"a":2}}`)
		second := []byte(`{"orders":{"z":1}}`)

		require.NoError(t, store.Save(ctx, "scope", first))
		blob, err := store.Load(ctx, "scope")
		require.NoError(t, err)
		assert.Equal(t, string(first), string(blob))

		require.NoError(t, store.Save(ctx, "scope", second))
		blob, err = store.Load(ctx, "scope")
		require.NoError(t, err)
		assert.Equal(t, string(second), string(blob))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "left", []byte("1")))
		require.NoError(t, store.Save(ctx, "right", []byte("2")))
		require.NoError(t, store.Clear(ctx, "left"))

		_, err := store.Load(ctx, "left")
		assert.ErrorIs(t, err, data.ErrStateNotFound)
		blob, err := store.Load(ctx, "right")
		require.NoError(t, err)
		assert.Equal(t, "2", string(blob))
	})

	t.Run("clear missing key", func(t *testing.T) {
		assert.NoError(t, store.Clear(ctx, "never-saved"))
	})
}
