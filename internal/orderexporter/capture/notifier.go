package capture

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/pkg/logging"
	"order-exporter/pkg/orderid"
)

// Notifier receives the outcome of every order fragment as soon as it is known.
type Notifier interface {
	OnSuccess(ctx context.Context, fragment locator.Node, order data.Order)
	OnDuplicate(ctx context.Context, fragment locator.Node, orderID string)
	OnFailure(ctx context.Context, fragment locator.Node, err *data.CaptureError)
}

type OutcomeKind string

const (
	Success   OutcomeKind = "success"
	Duplicate OutcomeKind = "duplicate"
	Failure   OutcomeKind = "failure"
)

type Outcome struct {
	OrderID string      `json:"orderId,omitempty"`
	Kind    OutcomeKind `json:"kind"`
	Reason  string      `json:"reason,omitempty"`
}

// Recorder keeps outcomes in arrival order.
type Recorder struct {
	mux      sync.Mutex
	outcomes []Outcome
}

func NewRecorder() *Recorder {
	return &Recorder{outcomes: make([]Outcome, 0)}
}

func (r *Recorder) OnSuccess(_ context.Context, _ locator.Node, order data.Order) {
	r.add(Outcome{OrderID: order.OrderID, Kind: Success})
}

func (r *Recorder) OnDuplicate(_ context.Context, _ locator.Node, orderID string) {
	r.add(Outcome{OrderID: orderID, Kind: Duplicate})
}

func (r *Recorder) OnFailure(_ context.Context, _ locator.Node, err *data.CaptureError) {
	r.add(Outcome{OrderID: err.OrderID, Kind: Failure, Reason: err.Reason})
}

func (r *Recorder) Outcomes() []Outcome {
	r.mux.Lock()
	defer r.mux.Unlock()
	res := make([]Outcome, len(r.outcomes))
	copy(res, r.outcomes)
	return res
}

func (r *Recorder) add(o Outcome) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.outcomes = append(r.outcomes, o)
}

type LoggingNotifier struct {
	logger *logging.ZapLogger
}

func NewLoggingNotifier(logger *logging.ZapLogger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) OnSuccess(ctx context.Context, _ locator.Node, order data.Order) {
	if !orderid.Validate(order.OrderID) {
		n.logger.WarnCtx(ctx, "unexpected order id format", zap.String("orderId", order.OrderID))
	}
	n.logger.DebugCtx(ctx, "order captured",
		zap.String("orderId", order.OrderID),
		zap.Int("itemCount", order.ItemCount),
	)
}

func (n *LoggingNotifier) OnDuplicate(ctx context.Context, _ locator.Node, orderID string) {
	n.logger.DebugCtx(ctx, "order already captured", zap.String("orderId", orderID))
}

func (n *LoggingNotifier) OnFailure(ctx context.Context, _ locator.Node, err *data.CaptureError) {
	n.logger.WarnCtx(ctx, "order capture failed",
		zap.String("orderId", err.OrderID),
		zap.String("reason", err.Reason),
	)
}

// MultiNotifier fans out to every notifier in order.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (m *MultiNotifier) OnSuccess(ctx context.Context, fragment locator.Node, order data.Order) {
	for _, n := range m.notifiers {
		n.OnSuccess(ctx, fragment, order)
	}
}

func (m *MultiNotifier) OnDuplicate(ctx context.Context, fragment locator.Node, orderID string) {
	for _, n := range m.notifiers {
		n.OnDuplicate(ctx, fragment, orderID)
	}
}

func (m *MultiNotifier) OnFailure(ctx context.Context, fragment locator.Node, err *data.CaptureError) {
	for _, n := range m.notifiers {
		n.OnFailure(ctx, fragment, err)
	}
}
