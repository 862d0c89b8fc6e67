package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/internal/orderexporter/parser"
	"order-exporter/internal/orderexporter/reconciler"
	"order-exporter/pkg/logging"
)

var (
	ErrNoOrdersFound  = errors.New("no orders found on page")
	ErrRunInProgress  = errors.New("capture run already in progress")
	ErrRunInterrupted = errors.New("capture run interrupted")
)

type RunState int

const (
	Idle RunState = iota
	Running
	Done
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Progress holds the live counters of the current or last run. It is never persisted.
type Progress struct {
	RunID    string   `json:"runId,omitempty"`
	State    RunState `json:"state"`
	Total    int      `json:"total"`
	Captured int      `json:"captured"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
}

type Result struct {
	Progress
	Batch    []data.Order
	Merged   bool
	Merge    reconciler.MergeResult
	Duration time.Duration
}

type Parser interface {
	ParseOrderID(fragment locator.Node) (string, error)
	Parse(fragment locator.Node) (data.Order, error)
}

type Reconciler interface {
	Load(ctx context.Context) (data.CaptureState, error)
	MergeBatch(ctx context.Context, batch []data.Order) (reconciler.MergeResult, error)
}

// Orchestrator runs captures over pages, one run at a time.
type Orchestrator struct {
	layout     locator.Layout
	parser     Parser
	reconciler Reconciler
	yielder    Yielder
	logger     *logging.ZapLogger

	mux      *sync.Mutex
	progress Progress
}

func NewOrchestrator(
	layout locator.Layout,
	parser Parser,
	reconciler Reconciler,
	yielder Yielder,
	logger *logging.ZapLogger,
) *Orchestrator {
	return &Orchestrator{
		layout:     layout,
		parser:     parser,
		reconciler: reconciler,
		yielder:    yielder,
		logger:     logger,
		mux:        &sync.Mutex{},
	}
}

func (o *Orchestrator) Progress() Progress {
	o.mux.Lock()
	defer o.mux.Unlock()
	return o.progress
}

// Run captures every order fragment of page and merges the new orders.
// A page without fragments ends the run before any state is read or written.
// Cancelling ctx abandons the run without writing state.
func (o *Orchestrator) Run(ctx context.Context, page locator.Node, notifier Notifier) (Result, error) {
	started := time.Now()
	if notifier == nil {
		notifier = NewMultiNotifier()
	}
	fragments := locator.ResolveAll(page, o.layout.OrderCards)
	if len(fragments) == 0 {
		return Result{}, ErrNoOrdersFound
	}

	runID := uuid.NewString()
	if !o.begin(runID, len(fragments)) {
		return Result{}, ErrRunInProgress
	}
	defer o.finish()

	ctx = logging.WithContextFields(ctx, zap.String("run_id", runID))
	o.logger.InfoCtx(ctx, "capture run started", zap.Int("fragments", len(fragments)))

	state, err := o.reconciler.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load capture state: %w", err)
	}

	batch := make([]data.Order, 0, len(fragments))
	inBatch := make(map[string]struct{}, len(fragments))
	for i, fragment := range fragments {
		if i > 0 {
			if err := o.yielder.Yield(ctx); err != nil {
				o.logger.WarnCtx(ctx, "capture run abandoned", zap.Error(err))
				return Result{}, fmt.Errorf("%w: %w", ErrRunInterrupted, err)
			}
		}

		orderID, err := o.parser.ParseOrderID(fragment)
		if err != nil {
			o.fail(ctx, notifier, fragment, parser.AsCaptureError("", err))
			continue
		}
		if _, ok := inBatch[orderID]; ok || state.Orders.Has(orderID) {
			o.update(func(p *Progress) { p.Skipped++ })
			notifier.OnDuplicate(ctx, fragment, orderID)
			continue
		}

		order, err := o.parser.Parse(fragment)
		if err != nil {
			o.fail(ctx, notifier, fragment, parser.AsCaptureError(orderID, err))
			continue
		}
		batch = append(batch, order)
		inBatch[orderID] = struct{}{}
		o.update(func(p *Progress) { p.Captured++ })
		notifier.OnSuccess(ctx, fragment, order)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRunInterrupted, err)
	}

	res := Result{Batch: batch}
	if len(batch) > 0 {
		res.Merge, err = o.reconciler.MergeBatch(ctx, batch)
		if err != nil {
			return Result{}, fmt.Errorf("failed to merge capture batch: %w", err)
		}
		res.Merged = true
	}
	res.Progress = o.Progress()
	res.State = Done
	res.Duration = time.Since(started)

	o.logger.InfoCtx(ctx, "capture run finished",
		zap.Int("total", res.Total),
		zap.Int("captured", res.Captured),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (o *Orchestrator) fail(ctx context.Context, notifier Notifier, fragment locator.Node, err *data.CaptureError) {
	o.update(func(p *Progress) { p.Failed++ })
	notifier.OnFailure(ctx, fragment, err)
}

func (o *Orchestrator) begin(runID string, total int) bool {
	o.mux.Lock()
	defer o.mux.Unlock()
	if o.progress.State == Running {
		return false
	}
	o.progress = Progress{
		RunID: runID,
		State: Running,
		Total: total,
	}
	return true
}

func (o *Orchestrator) finish() {
	o.update(func(p *Progress) { p.State = Done })
}

func (o *Orchestrator) update(f func(p *Progress)) {
	o.mux.Lock()
	defer o.mux.Unlock()
	f(&o.progress)
}
