package threadsafe

import (
	"sync"
	"time"
)

// Time holds an instant that only moves forward.
type Time struct {
	time time.Time
	mux  sync.Mutex
}

func NewTime(t time.Time) *Time {
	return &Time{time: t}
}

func (t *Time) Get() time.Time {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.time
}

// Advance stores value if it is later than the current instant and reports whether it did.
func (t *Time) Advance(value time.Time) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	if !value.After(t.time) {
		return false
	}
	t.time = value
	return true
}

// Within reports whether now is less than d after the stored instant. A zero instant is never within.
func (t *Time) Within(now time.Time, d time.Duration) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	return !t.time.IsZero() && now.Sub(t.time) < d
}
