package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/internal/orderexporter/parser"
)

type Registry struct {
	reg         *prometheus.Registry
	Captured    prometheus.Counter
	Skipped     prometheus.Counter
	Failed      *prometheus.CounterVec
	Runs        *prometheus.CounterVec
	Merges      prometheus.Counter
	StateOrders *prometheus.GaugeVec
	RunDuration prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	captured := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderexporter_orders_captured_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderexporter_orders_skipped_total"})
	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orderexporter_orders_failed_total"},
		[]string{"kind"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orderexporter_runs_total"},
		[]string{"result"},
	)
	merges := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderexporter_merges_total"})
	stateOrders := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "orderexporter_state_orders"},
		[]string{"scope"},
	)
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderexporter_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(captured, skipped, failed, runs, merges, stateOrders, runDuration)
	return &Registry{
		reg:         r,
		Captured:    captured,
		Skipped:     skipped,
		Failed:      failed,
		Runs:        runs,
		Merges:      merges,
		StateOrders: stateOrders,
		RunDuration: runDuration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveRun records the end of a run. result is "ok", "interrupted", "empty" or "error".
func (r *Registry) ObserveRun(result string, d time.Duration) {
	r.Runs.WithLabelValues(result).Inc()
	if d > 0 {
		r.RunDuration.Observe(d.Seconds())
	}
}

func (r *Registry) ObserveMerge(scope string, total int) {
	r.Merges.Inc()
	r.StateOrders.WithLabelValues(scope).Set(float64(total))
}

func (r *Registry) SetStateOrders(scope string, total int) {
	r.StateOrders.WithLabelValues(scope).Set(float64(total))
}

// Notifier counts per-fragment outcomes as they happen.
type Notifier struct {
	reg *Registry
}

func (r *Registry) Notifier() *Notifier {
	return &Notifier{reg: r}
}

func (n *Notifier) OnSuccess(context.Context, locator.Node, data.Order) {
	n.reg.Captured.Inc()
}

func (n *Notifier) OnDuplicate(context.Context, locator.Node, string) {
	n.reg.Skipped.Inc()
}

func (n *Notifier) OnFailure(_ context.Context, _ locator.Node, err *data.CaptureError) {
	n.reg.Failed.WithLabelValues(parser.FailureKind(err)).Inc()
}
