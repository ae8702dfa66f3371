package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepClock_AdvancesOneStepPerRead(t *testing.T) {
	clock := NewStepClock(time.Millisecond)

	t1 := clock.Now()
	t2 := clock.Now()
	assert.Equal(t, Epoch.Add(time.Millisecond), t1)
	assert.Equal(t, time.Millisecond, t2.Sub(t1))
	assert.Equal(t, int64(2), clock.Reads())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
}

func TestStepClock_ConcurrentReadsAreMonotonic(t *testing.T) {
	clock := NewStepClock(time.Nanosecond)

	const goroutines, reads = 8, 100
	var wg sync.WaitGroup
	results := make([][]time.Time, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < reads; i++ {
				results[g] = append(results[g], clock.Now())
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, int64(goroutines*reads), clock.Reads())
	for _, seq := range results {
		for i := 1; i < len(seq); i++ {
			assert.True(t, seq[i].After(seq[i-1]))
		}
	}
}

func TestFrozenClock_NeverAdvances(t *testing.T) {
	var clock FrozenClock
	assert.Equal(t, clock.Now(), clock.Now())
}
