package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter"
	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/data/memstore"
	"order-exporter/internal/orderexporter/dom/domtest"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

func newClient(t *testing.T, scope string) *Client {
	t.Helper()
	now := func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) }
	svc := service.New(service.Config{StateKey: "amazonOrderExporter"}, memstore.New(), nil, nil, now, logging.NewNop())
	server := orderexporter.NewServer(orderexporter.Config{}, svc, nil, logging.NewNop())
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return New(Config{ServerAddress: srv.URL, Scope: scope, Timeout: 5 * time.Second}, logging.NewNop())
}

func TestClientRoundTrip(t *testing.T) {
	c := newClient(t, "cli")
	ctx := context.Background()

	report, err := c.Capture(ctx, strings.NewReader(domtest.Page(1, 2, domtest.SampleOrders()...)), "https://www.amazon.com/your-orders/orders")
	require.NoError(t, err)
	assert.Equal(t, "cli", report.Scope)
	assert.Equal(t, 3, report.Captured)
	assert.Equal(t, "https://www.amazon.com/your-orders/orders?startIndex=10", report.NextPageURL)

	progress, err := c.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", progress.State)

	artifact, err := c.Export(ctx, "json", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "amazon_orders_2024-06-10.json", artifact.Filename)
	state, err := data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Total)

	artifact, err = c.Export(ctx, "json", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)
	state, err = data.DecodeState(artifact.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"333-3333333-3333333"}, state.Orders.IDs())

	require.NoError(t, c.Clear(ctx))
	artifact, err = c.Export(ctx, "csv", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, artifact.Body)
}

func TestClientErrors(t *testing.T) {
	c := newClient(t, "")
	ctx := context.Background()

	_, err := c.Capture(ctx, strings.NewReader("<html></html>"), "")
	assert.ErrorIs(t, err, ErrNoOrdersFound)

	_, err = c.Export(ctx, "pdf", time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "404")

	_, err = c.NextPage(ctx, strings.NewReader(domtest.Page(0, 0)), "")
	assert.ErrorContains(t, err, "400")
}

func TestClientNextPage(t *testing.T) {
	c := newClient(t, "")

	next, err := c.NextPage(context.Background(), strings.NewReader(domtest.Page(2, 2)), "https://www.amazon.com/your-orders/orders?startIndex=10")
	require.NoError(t, err)
	assert.Equal(t, "https://www.amazon.com/your-orders/orders?startIndex=20", next)
}

func TestClientStatusMapping(t *testing.T) {
	statuses := map[int]error{
		http.StatusConflict:        ErrCaptureInProgress,
		http.StatusTooManyRequests: ErrCoolingDown,
	}
	for status, expected := range statuses {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(Config{ServerAddress: srv.URL}, logging.NewNop())
		_, err := c.Capture(context.Background(), strings.NewReader(""), "")
		assert.ErrorIs(t, err, expected)
		srv.Close()
	}
}
