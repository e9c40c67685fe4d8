package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDeterministicClock_FirstReadingIsStart(t *testing.T) {
	clock := NewDeterministicClock(start, time.Second)
	assert.Equal(t, start, clock.Now())
	assert.Equal(t, int64(1), clock.Reads())
}

func TestDeterministicClock_Advances(t *testing.T) {
	clock := NewDeterministicClock(start, time.Second)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(time.Second), clock.Now())
	assert.Equal(t, start.Add(2*time.Second), clock.Now())
}

func TestDeterministicClock_ZeroStepIsFixed(t *testing.T) {
	clock := NewDeterministicClock(start, 0)
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(start, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()

	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, start, clock.Now())
}

func TestDeterministicClock_ConcurrentAccess(t *testing.T) {
	clock := NewDeterministicClock(start, time.Millisecond)

	const goroutines = 50
	const readsPerGoroutine = 20

	var wg sync.WaitGroup
	seen := make(chan time.Time, goroutines*readsPerGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < readsPerGoroutine; j++ {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, goroutines*readsPerGoroutine, "every reading is distinct")
	assert.Equal(t, int64(goroutines*readsPerGoroutine), clock.Reads())
}
