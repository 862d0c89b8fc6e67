package reconciler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

// Store persists one state blob per key.
type Store interface {
	// Load returns data.ErrStateNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Clear(ctx context.Context, key string) error
}

type Clock func() time.Time

type MergeResult struct {
	Added    []string
	Replaced []string
	State    data.CaptureState
}

// Reconciler owns the CaptureState of one storage key.
type Reconciler struct {
	store  Store
	key    string
	now    Clock
	logger *logging.ZapLogger

	mux   *sync.RWMutex
	state data.CaptureState
}

func New(store Store, key string, now Clock, logger *logging.ZapLogger) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		store:  store,
		key:    key,
		now:    now,
		logger: logger,
		mux:    &sync.RWMutex{},
		state:  data.NewCaptureState(),
	}
}

func (r *Reconciler) Key() string {
	return r.key
}

// Load replaces the in-memory state with the persisted one. A missing blob yields an empty state.
func (r *Reconciler) Load(ctx context.Context) (data.CaptureState, error) {
	state, err := r.Persisted(ctx)
	if err != nil {
		return data.CaptureState{}, err
	}

	r.mux.Lock()
	defer r.mux.Unlock()
	r.state = state
	return state, nil
}

// Persisted reads the stored state without touching the in-memory one.
func (r *Reconciler) Persisted(ctx context.Context) (data.CaptureState, error) {
	blob, err := r.store.Load(ctx, r.key)
	switch {
	case errors.Is(err, data.ErrStateNotFound):
		r.logger.DebugCtx(ctx, "no persisted state, starting empty", zap.String("key", r.key))
		return data.NewCaptureState(), nil
	case err != nil:
		return data.CaptureState{}, fmt.Errorf("failed to load state %s: %w", r.key, err)
	}
	state, err := data.DecodeState(blob)
	if err != nil {
		return data.CaptureState{}, fmt.Errorf("failed to decode state %s: %w", r.key, err)
	}
	return state, nil
}

// MergeBatch folds a batch into the state and persists the result as one blob.
// An empty batch changes nothing and writes nothing.
func (r *Reconciler) MergeBatch(ctx context.Context, batch []data.Order) (MergeResult, error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	if len(batch) == 0 {
		return MergeResult{State: r.state}, nil
	}

	merged, added, replaced := merge(r.state.Orders.Orders(), batch)
	slices.SortStableFunc(merged, func(a, b data.Order) int {
		return strings.Compare(b.OrderDate, a.OrderDate)
	})

	lastUpdate := r.now().UTC().Format(data.TimestampLayout)
	lastOrder := batch[0].OrderID
	next := data.CaptureState{
		LastUpdate: &lastUpdate,
		Captures:   r.state.Captures + 1,
		LastOrder:  &lastOrder,
		Orders:     data.NewOrderBook(merged...),
	}
	next.Total = next.Orders.Len()

	blob, err := data.EncodeState(next)
	if err != nil {
		return MergeResult{}, err
	}
	if err := r.store.Save(ctx, r.key, blob); err != nil {
		return MergeResult{}, fmt.Errorf("failed to save state %s: %w", r.key, err)
	}
	r.state = next

	r.logger.InfoCtx(ctx, "merged capture batch",
		zap.String("key", r.key),
		zap.Int("added", len(added)),
		zap.Int("replaced", len(replaced)),
		zap.Int("total", next.Total),
	)
	return MergeResult{
		Added:    added,
		Replaced: replaced,
		State:    next,
	}, nil
}

// Current returns the last loaded or merged state.
func (r *Reconciler) Current() data.CaptureState {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.state
}

func (r *Reconciler) Clear(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if err := r.store.Clear(ctx, r.key); err != nil {
		return fmt.Errorf("failed to clear state %s: %w", r.key, err)
	}
	r.state = data.NewCaptureState()
	return nil
}

// merge keeps existing orders in place, lets batch entries replace them by id
// and appends the rest in batch order.
func merge(existing, batch []data.Order) (merged []data.Order, added, replaced []string) {
	merged = make([]data.Order, 0, len(existing)+len(batch))
	merged = append(merged, existing...)
	index := make(map[string]int, len(merged))
	for i, order := range merged {
		index[order.OrderID] = i
	}
	added = make([]string, 0, len(batch))
	replaced = make([]string, 0)
	for _, order := range batch {
		if i, ok := index[order.OrderID]; ok {
			if i < len(existing) && !slices.Contains(replaced, order.OrderID) {
				replaced = append(replaced, order.OrderID)
			}
			merged[i] = order
			continue
		}
		index[order.OrderID] = len(merged)
		merged = append(merged, order)
		added = append(added, order.OrderID)
	}
	return merged, added, replaced
}
