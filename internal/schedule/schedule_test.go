package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const window = 20 * time.Millisecond

func TestDebouncerCoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(window, func() { calls.Add(1) })

	for range 10 {
		d.Trigger()
		time.Sleep(window / 5)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, window/4)
	time.Sleep(3 * window)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerFiresWindowAfterLastTrigger(t *testing.T) {
	var fired atomic.Int64
	d := NewDebouncer(window, func() { fired.Store(time.Now().UnixNano()) })

	var last time.Time
	for range 10 {
		last = time.Now()
		d.Trigger()
		time.Sleep(window / 4)
	}

	assert.Eventually(t, func() bool { return fired.Load() != 0 }, time.Second, window/4)
	gap := time.Unix(0, fired.Load()).Sub(last)
	assert.GreaterOrEqual(t, gap, window)
	assert.Less(t, gap, 10*window)
}

func TestDebouncerSeparateBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(window, func() { calls.Add(1) })

	d.Trigger()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, window/4)
	d.Trigger()
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, window/4)
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(window, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(4 * window)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSchedulerRunsBothOnce(t *testing.T) {
	var recomputes, observes atomic.Int32
	s := NewScheduler(window, func() { recomputes.Add(1) }, func() { observes.Add(1) })

	for range 5 {
		s.Signal()
	}

	assert.Eventually(t, func() bool {
		return recomputes.Load() == 1 && observes.Load() == 1
	}, time.Second, window/4)
}

func TestSchedulerNilObserver(t *testing.T) {
	var recomputes atomic.Int32
	s := NewScheduler(window, func() { recomputes.Add(1) }, nil)
	s.Signal()
	assert.Eventually(t, func() bool { return recomputes.Load() == 1 }, time.Second, window/4)

	s.Stop()
	s.Signal()
	time.Sleep(3 * window)
	assert.Equal(t, int32(1), recomputes.Load())
}
