package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

func TestExportFormats(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()
	_, err := f.svc.Capture(ctx, "", samplePage(), "")
	require.NoError(t, err)

	artifact, err := f.svc.Export(ctx, "", "json", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "amazon_orders_2024-06-10.json", artifact.Filename)
	assert.Equal(t, "application/json", artifact.ContentType)
	state, err := data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Total)

	artifact, err = f.svc.Export(ctx, "", "CSV", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "amazon_orders_2024-06-10.csv", artifact.Filename)
	lines := strings.Split(string(artifact.Body), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], `"333-3333333-3333333"`))

	artifact, err = f.svc.Export(ctx, "", "xlsx", time.Time{}, time.Time{})
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(artifact.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestExportWindow(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()
	_, err := f.svc.Capture(ctx, "", samplePage(), "")
	require.NoError(t, err)

	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	artifact, err := f.svc.Export(ctx, "", "json", from, time.Time{})
	require.NoError(t, err)

	state, err := data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"333-3333333-3333333", "111-1111111-1111111"}, state.Orders.IDs())
	assert.Equal(t, 2, state.Total)
}

func TestExportEmptyScope(t *testing.T) {
	f := newFixture(Config{})

	artifact, err := f.svc.Export(context.Background(), "fresh", "csv", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, artifact.Body)
}

func TestExportUnknownFormat(t *testing.T) {
	f := newFixture(Config{})

	_, err := f.svc.Export(context.Background(), "", "pdf", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportReadsPersistedState(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()
	_, err := f.svc.Capture(ctx, "", samplePage(), "")
	require.NoError(t, err)

	other := New(Config{StateKey: stateKey}, f.store, nil, nil, f.clock.now, logging.NewNop())
	artifact, err := other.Export(ctx, "", "json", time.Time{}, time.Time{})
	require.NoError(t, err)
	state, err := data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Total)
}

func TestExportKeepsMergedState(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()
	_, err := f.svc.Capture(ctx, "", samplePage(), "")
	require.NoError(t, err)

	stale, err := data.EncodeState(data.NewCaptureState())
	require.NoError(t, err)
	require.NoError(t, f.store.Save(ctx, stateKey, stale))

	artifact, err := f.svc.Export(ctx, "", "json", time.Time{}, time.Time{})
	require.NoError(t, err)
	exported, err := data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, 0, exported.Total)

	assert.Equal(t, 3, f.svc.scope(DefaultScope).reconciler.Current().Total)
}
