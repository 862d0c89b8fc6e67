package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter"
	"order-exporter/internal/orderexporter/data/memstore"
	"order-exporter/internal/orderexporter/dom/domtest"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCaptureAndExportCommands(t *testing.T) {
	now := func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) }
	svc := service.New(service.Config{StateKey: "amazonOrderExporter"}, memstore.New(), nil, nil, now, logging.NewNop())
	srv := httptest.NewServer(orderexporter.NewServer(orderexporter.Config{}, svc, nil, logging.NewNop()).Handler())
	defer srv.Close()

	dir := t.TempDir()
	page := filepath.Join(dir, "orders.html")
	require.NoError(t, os.WriteFile(page, []byte(domtest.Page(0, 0, domtest.SampleOrders()...)), 0o644))

	out, err := execute(t, "-a", srv.URL, "capture", page)
	require.NoError(t, err)
	assert.Contains(t, out, "orders.html: captured 3, failed 0, skipped 0, stored 3")

	out, err = execute(t, "-a", srv.URL, "export", "csv", "-o", dir, "--from", "2024-06-01")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "amazon_orders_2024-06-10.csv"), path)
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(body), "\n"), 3)

	_, err = execute(t, "-a", srv.URL, "export", "csv", "--from", "June")
	assert.Error(t, err)

	_, err = execute(t, "-a", srv.URL, "clear")
	assert.NoError(t, err)
}
