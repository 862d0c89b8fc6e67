package pebblestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter/data/storetest"
)

func TestPebbleStore(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	storetest.Run(t, store)
}

func TestPebbleStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "scope", []byte(`{"orders":{}}`)))
	require.NoError(t, store.Close())

	store, err = New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	blob, err := store.Load(context.Background(), "scope")
	require.NoError(t, err)
	assert.Equal(t, `{"orders":{}}`, string(blob))
}
