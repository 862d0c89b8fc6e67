package inbox

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/data/memstore"
	"order-exporter/internal/orderexporter/dom/domtest"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
)

type fakeService struct {
	err     error
	pageURL string
}

func (f *fakeService) Capture(_ context.Context, _ string, page io.Reader, pageURL string) (exportprotocol.CaptureReport, error) {
	f.pageURL = pageURL
	if _, err := io.ReadAll(page); err != nil {
		return exportprotocol.CaptureReport{}, err
	}
	return exportprotocol.CaptureReport{}, f.err
}

func writePage(t *testing.T, dir, name, html string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(html), 0o644))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestMonitorCapturesInbox(t *testing.T) {
	dir := t.TempDir()
	store := memstore.New()
	svc := service.New(service.Config{StateKey: "amazonOrderExporter"}, store, nil, nil, nil, logging.NewNop())
	m := NewMonitor(Config{Dir: dir, TickPeriod: 10 * time.Millisecond, TasksBufferLength: 4}, svc, logging.NewNop())

	writePage(t, dir, "page-1.html", domtest.Page(0, 0, domtest.SampleOrders()...))
	writePage(t, dir, "empty.html", "<html><body></body></html>")
	writePage(t, dir, "notes.txt", "ignored")

	errCh := make(chan error, 1)
	go func() { errCh <- m.Run() }()

	require.Eventually(t, func() bool {
		return exists(filepath.Join(dir, DoneDir, "page-1.html")) &&
			exists(filepath.Join(dir, FailedDir, "empty.html"))
	}, 5*time.Second, 10*time.Millisecond)

	m.Stop()
	require.NoError(t, <-errCh)

	assert.True(t, exists(filepath.Join(dir, "notes.txt")))
	_, err := store.Load(context.Background(), "amazonOrderExporter")
	assert.NoError(t, err)
}

func TestHandlePage(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		remaining string
	}{
		{name: "captured", err: nil, remaining: DoneDir},
		{name: "no orders", err: service.ErrNoOrdersFound, remaining: FailedDir},
		{name: "cooling down", err: service.ErrCoolingDown, remaining: ""},
		{name: "busy", err: service.ErrCaptureInProgress, remaining: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, DoneDir), 0o755))
			require.NoError(t, os.MkdirAll(filepath.Join(dir, FailedDir), 0o755))
			writePage(t, dir, "p.html", "<html></html>")
			writePage(t, dir, "p.html.url", "https://www.amazon.com/your-orders/orders\n")

			fake := &fakeService{err: test.err}
			m := NewMonitor(Config{Dir: dir}, fake, logging.NewNop())
			err := m.handlePage(context.Background(), "p.html")
			if test.err != nil && test.remaining == FailedDir {
				assert.ErrorIs(t, err, test.err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, "https://www.amazon.com/your-orders/orders", fake.pageURL)
			assert.Equal(t, test.remaining == "", exists(filepath.Join(dir, "p.html")))
			if test.remaining != "" {
				assert.True(t, exists(filepath.Join(dir, test.remaining, "p.html")))
				assert.True(t, exists(filepath.Join(dir, test.remaining, "p.html.url")))
			}
		})
	}
}
