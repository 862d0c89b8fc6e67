package timeutils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	res, err := Retry(
		context.Background(),
		[]time.Duration{time.Millisecond, time.Millisecond},
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, assert.AnError
			}
			return 42, nil
		},
		func(_ int, err error) bool { return err != nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, 3, calls)
}

func TestRetryKeepsLastError(t *testing.T) {
	calls := 0
	_, err := Retry(
		context.Background(),
		[]time.Duration{time.Millisecond},
		func(context.Context) (struct{}, error) {
			calls++
			return struct{}{}, assert.AnError
		},
		func(_ struct{}, err error) bool { return err != nil },
	)
	assert.ErrorIs(t, err, ErrAllAttemptsFailed)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, []time.Duration{time.Hour},
		func(context.Context) (int, error) { return 0, nil },
		func(int, error) bool { return false },
	)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, SleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepCtx(ctx, time.Hour), context.Canceled)
}
