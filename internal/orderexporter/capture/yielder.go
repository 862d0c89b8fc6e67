package capture

import (
	"context"
	"runtime"
	"time"

	"order-exporter/pkg/timeutils"
)

// Yielder is the checkpoint the orchestrator passes between two fragments.
// A non-nil error abandons the run.
type Yielder interface {
	Yield(ctx context.Context) error
}

// DelayYielder gives up the processor and then waits for Delay.
type DelayYielder struct {
	Delay time.Duration
}

func NewDelayYielder(delay time.Duration) *DelayYielder {
	return &DelayYielder{Delay: delay}
}

func (y *DelayYielder) Yield(ctx context.Context) error {
	runtime.Gosched()
	if y.Delay <= 0 {
		return ctx.Err()
	}
	return timeutils.SleepCtx(ctx, y.Delay)
}
