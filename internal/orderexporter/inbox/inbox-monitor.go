package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/service"
	"order-exporter/pkg/logging"
	"order-exporter/pkg/threadsafe"
)

const (
	pageSuffix = ".html"
	// An optional sidecar "<page>.url" holds the URL the page was saved from.
	urlSuffix = ".url"

	DoneDir   = "done"
	FailedDir = "failed"
)

type CaptureService interface {
	Capture(ctx context.Context, scope string, page io.Reader, pageURL string) (exportprotocol.CaptureReport, error)
}

type Config struct {
	Dir               string
	Scope             string
	TickPeriod        time.Duration
	TasksBufferLength int
}

// Monitor captures saved order-history pages dropped into a directory.
// Pages are captured one at a time and moved to done/ or failed/.
type Monitor struct {
	service    CaptureService
	processing *threadsafe.HashSet[string]
	config     Config
	logger     *logging.ZapLogger
	done       chan struct{}
}

func NewMonitor(config Config, service CaptureService, logger *logging.ZapLogger) *Monitor {
	if config.TasksBufferLength <= 0 {
		config.TasksBufferLength = 1
	}
	return &Monitor{
		service:    service,
		processing: threadsafe.NewHashSet[string](),
		config:     config,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

func (m *Monitor) Run() error {
	for _, dir := range []string{m.config.Dir, m.dir(DoneDir), m.dir(FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create inbox dir: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logging.WithContextFields(ctx, zap.String("inbox", m.config.Dir))

	pagesChan := make(chan string, m.config.TasksBufferLength)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func(pagesChan <-chan string) {
		defer wg.Done()
		m.worker(ctx, pagesChan)
	}(pagesChan)

	wg.Add(1)
	go func(pagesChan chan<- string) {
		defer wg.Done()
		defer cancel()
		m.scheduler(ctx, pagesChan)
	}(pagesChan)

	wg.Wait()
	return nil
}

func (m *Monitor) Stop() {
	close(m.done)
}

func (m *Monitor) scheduler(ctx context.Context, pagesChan chan<- string) {
	defer close(pagesChan)

	ticker := time.NewTicker(m.config.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if err := m.tick(ctx, pagesChan); err != nil {
				m.logger.ErrorCtx(ctx, "error while scheduling pages", zap.Error(err))
			}
		}
	}
}

func (m *Monitor) tick(ctx context.Context, pagesChan chan<- string) error {
	maxTasksToSchedule := m.config.TasksBufferLength - len(pagesChan)
	if maxTasksToSchedule <= 0 {
		return nil
	}
	pages, err := m.pendingPages()
	if err != nil {
		return err
	}
	for _, page := range pages {
		if maxTasksToSchedule == 0 {
			return nil
		}
		if !m.processing.Add(page) {
			continue
		}
		m.logger.DebugCtx(ctx, "scheduling page", zap.String("page", page))
		pagesChan <- page
		maxTasksToSchedule--
	}
	return nil
}

// pendingPages lists the pages waiting in the inbox, oldest name first.
func (m *Monitor) pendingPages() ([]string, error) {
	entries, err := os.ReadDir(m.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}
	pages := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), pageSuffix) {
			continue
		}
		pages = append(pages, entry.Name())
	}
	sort.Strings(pages)
	return pages, nil
}

func (m *Monitor) worker(ctx context.Context, pagesChan <-chan string) {
	for page := range pagesChan {
		err := m.handlePage(ctx, page)
		m.processing.Remove(page)
		if err != nil {
			m.logger.ErrorCtx(ctx, "failed to handle page", zap.String("page", page), zap.Error(err))
		}
	}
}

func (m *Monitor) handlePage(ctx context.Context, page string) error {
	path := filepath.Join(m.config.Dir, page)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	report, err := m.service.Capture(ctx, m.config.Scope, f, m.pageURL(page))
	if closeErr := f.Close(); closeErr != nil {
		m.logger.WarnCtx(ctx, "failed to close page", zap.String("page", page), zap.Error(closeErr))
	}
	switch {
	case errors.Is(err, service.ErrCaptureInProgress),
		errors.Is(err, service.ErrCoolingDown),
		errors.Is(err, service.ErrRunInterrupted):
		// left in place for the next tick
		m.logger.DebugCtx(ctx, "page postponed", zap.String("page", page), zap.Error(err))
		return nil
	case err != nil:
		if moveErr := m.move(page, FailedDir); moveErr != nil {
			return errors.Join(err, moveErr)
		}
		return fmt.Errorf("capture of %s failed: %w", page, err)
	}

	m.logger.InfoCtx(ctx, "page captured",
		zap.String("page", page),
		zap.Int("captured", report.Captured),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.String("nextPageUrl", report.NextPageURL),
	)
	return m.move(page, DoneDir)
}

func (m *Monitor) pageURL(page string) string {
	raw, err := os.ReadFile(filepath.Join(m.config.Dir, page+urlSuffix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (m *Monitor) move(page, to string) error {
	if err := os.Rename(filepath.Join(m.config.Dir, page), filepath.Join(m.dir(to), page)); err != nil {
		return fmt.Errorf("failed to move page to %s: %w", to, err)
	}
	sidecar := filepath.Join(m.config.Dir, page+urlSuffix)
	if _, err := os.Stat(sidecar); err == nil {
		if err := os.Rename(sidecar, filepath.Join(m.dir(to), page+urlSuffix)); err != nil {
			return fmt.Errorf("failed to move page url to %s: %w", to, err)
		}
	}
	return nil
}

func (m *Monitor) dir(name string) string {
	return filepath.Join(m.config.Dir, name)
}
