package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/internal/orderexporter/normalize"
	"order-exporter/internal/orderexporter/parser"
)

func TestNotifierCountsOutcomes(t *testing.T) {
	reg := NewRegistry()
	n := reg.Notifier()
	ctx := context.Background()

	n.OnSuccess(ctx, nil, data.Order{OrderID: "a"})
	n.OnSuccess(ctx, nil, data.Order{OrderID: "b"})
	n.OnDuplicate(ctx, nil, "c")
	n.OnFailure(ctx, nil, data.NewCaptureError("", &locator.FieldNotFoundError{Field: "order id"}))
	n.OnFailure(ctx, nil, data.NewCaptureError("d", &normalize.MalformedAmountError{Text: "n/a"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Captured))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Failed.WithLabelValues(parser.KindFieldNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Failed.WithLabelValues(parser.KindMalformedAmount)))
}

func TestObserveRunAndMerge(t *testing.T) {
	reg := NewRegistry()

	reg.ObserveRun("ok", 2*time.Second)
	reg.ObserveRun("interrupted", 0)
	reg.ObserveMerge("default", 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Runs.WithLabelValues("interrupted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Merges))
	assert.Equal(t, 7.0, testutil.ToFloat64(reg.StateOrders.WithLabelValues("default")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg.RunDuration))
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Captured.Add(3)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "orderexporter_orders_captured_total 3"))
}
