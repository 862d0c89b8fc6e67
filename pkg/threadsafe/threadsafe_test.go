package threadsafe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashSet(t *testing.T) {
	set := NewHashSet[string]()

	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("a"))
	assert.True(t, set.Contains("a"))
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Remove("a"))
	assert.False(t, set.Remove("a"))
	assert.False(t, set.Contains("a"))
}

func TestHashSetAddIsExclusive(t *testing.T) {
	set := NewHashSet[string]()
	wins := make(chan bool, 50)
	wg := &sync.WaitGroup{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- set.Add("scope")
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestTime(t *testing.T) {
	start := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	tm := NewTime(time.Time{})

	assert.False(t, tm.Within(start, time.Hour))
	assert.True(t, tm.Advance(start))
	assert.False(t, tm.Advance(start.Add(-time.Minute)))
	assert.Equal(t, start, tm.Get())

	assert.True(t, tm.Within(start.Add(59*time.Second), time.Minute))
	assert.False(t, tm.Within(start.Add(time.Minute), time.Minute))
}
