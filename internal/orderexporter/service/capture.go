package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"order-exporter/internal/common/exportprotocol"
	"order-exporter/internal/orderexporter/capture"
	"order-exporter/internal/orderexporter/dom"
	"order-exporter/internal/orderexporter/journal"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/internal/orderexporter/metrics"
	"order-exporter/internal/orderexporter/navigation"
	"order-exporter/internal/orderexporter/parser"
	"order-exporter/internal/orderexporter/reconciler"
	"order-exporter/pkg/logging"
	"order-exporter/pkg/threadsafe"
)

const (
	DefaultScope = "default"

	runOK          = "ok"
	runEmpty       = "empty"
	runInterrupted = "interrupted"
	runError       = "error"
)

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

type Clock func() time.Time

type Config struct {
	// StateKey is the storage key of the default scope. Other scopes are stored under "StateKey:scope".
	StateKey   string
	YieldDelay time.Duration
	Cooldown   time.Duration
}

type scopeState struct {
	reconciler   *reconciler.Reconciler
	orchestrator *capture.Orchestrator
	lastRun      *threadsafe.Time
}

// CaptureService runs captures and exports per scope. Each scope owns one persisted state.
type CaptureService struct {
	cfg     Config
	store   Store
	layout  locator.Layout
	parser  *parser.Parser
	journal JournalWriter
	metrics *metrics.Registry
	now     Clock
	logger  *logging.ZapLogger

	running *threadsafe.HashSet[string]
	mux     *sync.Mutex
	scopes  map[string]*scopeState
}

func New(
	cfg Config,
	store Store,
	journalWriter JournalWriter,
	registry *metrics.Registry,
	now Clock,
	logger *logging.ZapLogger,
) *CaptureService {
	if now == nil {
		now = time.Now
	}
	if journalWriter == nil {
		journalWriter = journal.Nop{}
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	layout := locator.DefaultLayout()
	return &CaptureService{
		cfg:     cfg,
		store:   store,
		layout:  layout,
		parser:  parser.New(layout, parser.Clock(now)),
		journal: journalWriter,
		metrics: registry,
		now:     now,
		logger:  logger,
		running: threadsafe.NewHashSet[string](),
		mux:     &sync.Mutex{},
		scopes:  make(map[string]*scopeState),
	}
}

// Capture extracts every order on the rendered page and merges the new ones into the scope state.
// pageURL is optional and only used to compute the next page.
func (s *CaptureService) Capture(
	ctx context.Context,
	scope string,
	page io.Reader,
	pageURL string,
) (exportprotocol.CaptureReport, error) {
	scope, err := normalizeScope(scope)
	if err != nil {
		return exportprotocol.CaptureReport{}, err
	}
	current, err := parsePageURL(pageURL, false)
	if err != nil {
		return exportprotocol.CaptureReport{}, err
	}
	doc, err := dom.Parse(page)
	if err != nil {
		return exportprotocol.CaptureReport{}, fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}

	if !s.running.Add(scope) {
		return exportprotocol.CaptureReport{}, ErrCaptureInProgress
	}
	defer s.running.Remove(scope)

	st := s.scope(scope)
	if st.lastRun.Within(s.now(), s.cfg.Cooldown) {
		return exportprotocol.CaptureReport{}, ErrCoolingDown
	}

	ctx = logging.WithContextFields(ctx, zap.String("scope", scope))
	recorder := capture.NewRecorder()
	notifier := capture.NewMultiNotifier(recorder, s.metrics.Notifier(), capture.NewLoggingNotifier(s.logger))

	res, err := st.orchestrator.Run(ctx, doc, notifier)
	if err != nil {
		return exportprotocol.CaptureReport{}, s.failedRun(ctx, st, err)
	}
	s.finishRun(st)
	s.metrics.ObserveRun(runOK, res.Duration)

	stored := st.reconciler.Current().Total
	if res.Merged {
		stored = res.Merge.State.Total
		s.metrics.ObserveMerge(scope, stored)
		s.appendJournal(ctx, scope, res)
	}

	report := exportprotocol.CaptureReport{
		Progress:     toProgress(scope, res.Progress),
		Merged:       res.Merged,
		Added:        nonNil(res.Merge.Added),
		Replaced:     nonNil(res.Merge.Replaced),
		StoredOrders: stored,
		Outcomes:     toOutcomes(recorder.Outcomes()),
		NextPageURL:  navigation.NextPageURL(doc, current, s.layout),
		DurationMs:   res.Duration.Milliseconds(),
	}
	return report, nil
}

func (s *CaptureService) failedRun(ctx context.Context, st *scopeState, err error) error {
	switch {
	case errors.Is(err, capture.ErrNoOrdersFound):
		s.metrics.ObserveRun(runEmpty, 0)
		return err
	case errors.Is(err, capture.ErrRunInProgress):
		return ErrCaptureInProgress
	case errors.Is(err, capture.ErrRunInterrupted):
		s.finishRun(st)
		s.metrics.ObserveRun(runInterrupted, 0)
		return err
	}
	s.finishRun(st)
	s.metrics.ObserveRun(runError, 0)
	s.logger.ErrorCtx(ctx, "capture run failed", zap.Error(err))
	return fmt.Errorf("capture run failed: %w", err)
}

func (s *CaptureService) finishRun(st *scopeState) {
	st.lastRun.Advance(s.now())
}

// The merge is already persisted, so a journal failure is only logged.
func (s *CaptureService) appendJournal(ctx context.Context, scope string, res capture.Result) {
	state := res.Merge.State
	record := journal.MergeRecord{
		RunID:    res.RunID,
		Scope:    scope,
		Added:    nonNil(res.Merge.Added),
		Replaced: nonNil(res.Merge.Replaced),
		Total:    state.Total,
		Captures: state.Captures,
	}
	if state.LastUpdate != nil {
		record.LastUpdate = *state.LastUpdate
	}
	if err := s.journal.Append(ctx, record); err != nil {
		s.logger.WarnCtx(ctx, "failed to append merge record", zap.Error(err))
	}
}

// Progress returns the live counters of the running or last run of scope.
func (s *CaptureService) Progress(scope string) (exportprotocol.Progress, error) {
	scope, err := normalizeScope(scope)
	if err != nil {
		return exportprotocol.Progress{}, err
	}
	s.mux.Lock()
	st, ok := s.scopes[scope]
	s.mux.Unlock()
	if !ok {
		return toProgress(scope, capture.Progress{}), nil
	}
	return toProgress(scope, st.orchestrator.Progress()), nil
}

// Clear removes the persisted state of scope.
func (s *CaptureService) Clear(ctx context.Context, scope string) error {
	scope, err := normalizeScope(scope)
	if err != nil {
		return err
	}
	if !s.running.Add(scope) {
		return ErrCaptureInProgress
	}
	defer s.running.Remove(scope)

	if err := s.scope(scope).reconciler.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear scope %s: %w", scope, err)
	}
	s.metrics.SetStateOrders(scope, 0)
	s.logger.InfoCtx(ctx, "capture state cleared", zap.String("scope", scope))
	return nil
}

// NextPage returns the URL of the page following the rendered one.
func (s *CaptureService) NextPage(page io.Reader, pageURL string) (string, error) {
	current, err := parsePageURL(pageURL, true)
	if err != nil {
		return "", err
	}
	doc, err := dom.Parse(page)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}
	return navigation.NextPageURL(doc, current, s.layout), nil
}

func (s *CaptureService) scope(scope string) *scopeState {
	s.mux.Lock()
	defer s.mux.Unlock()
	if st, ok := s.scopes[scope]; ok {
		return st
	}
	r := reconciler.New(s.store, s.storageKey(scope), reconciler.Clock(s.now), s.logger)
	st := &scopeState{
		reconciler: r,
		orchestrator: capture.NewOrchestrator(
			s.layout,
			s.parser,
			r,
			capture.NewDelayYielder(s.cfg.YieldDelay),
			s.logger,
		),
		lastRun: threadsafe.NewTime(time.Time{}),
	}
	s.scopes[scope] = st
	return st
}

func (s *CaptureService) storageKey(scope string) string {
	if scope == DefaultScope {
		return s.cfg.StateKey
	}
	return s.cfg.StateKey + ":" + scope
}

func normalizeScope(scope string) (string, error) {
	if scope == "" {
		return DefaultScope, nil
	}
	if !scopePattern.MatchString(scope) {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return scope, nil
}

func parsePageURL(raw string, required bool) (*url.URL, error) {
	if raw == "" {
		if required {
			return nil, fmt.Errorf("%w: empty", ErrInvalidPageURL)
		}
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPageURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidPageURL, raw)
	}
	return u, nil
}

func toProgress(scope string, p capture.Progress) exportprotocol.Progress {
	return exportprotocol.Progress{
		Scope:    scope,
		RunID:    p.RunID,
		State:    p.State.String(),
		Total:    p.Total,
		Captured: p.Captured,
		Failed:   p.Failed,
		Skipped:  p.Skipped,
	}
}

func toOutcomes(outcomes []capture.Outcome) []exportprotocol.Outcome {
	res := make([]exportprotocol.Outcome, len(outcomes))
	for i, o := range outcomes {
		res[i] = exportprotocol.Outcome{
			OrderID: o.OrderID,
			Kind:    exportprotocol.OutcomeKind(o.Kind),
			Reason:  o.Reason,
		}
	}
	return res
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
