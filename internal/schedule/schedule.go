// Package schedule coalesces bursts of render events into single trailing
// executions.
package schedule

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultWindow is the quiet period after the last trigger before a
// debounced function runs
const DefaultWindow = 200 * time.Millisecond

// Debouncer runs fn once after triggers stop arriving for the window.
// Every trigger re-arms the single pending timer.
type Debouncer struct {
	mu        sync.Mutex
	stopped   bool
	fn        func()
	debounced func(f func())
}

// NewDebouncer creates a debouncer for fn. A non-positive window uses
// DefaultWindow.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		fn:        fn,
		debounced: debounce.New(window),
	}
}

// Trigger schedules fn, replacing any pending execution
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.debounced(d.run)
}

// Stop cancels the pending execution. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.debounced(func() {})
}

func (d *Debouncer) run() {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped {
		d.fn()
	}
}

// Scheduler debounces the label recompute and the render observer
// independently over the same window
type Scheduler struct {
	recompute *Debouncer
	observe   *Debouncer
}

// NewScheduler creates a scheduler. A nil observe function is allowed.
func NewScheduler(window time.Duration, recompute, observe func()) *Scheduler {
	if observe == nil {
		observe = func() {}
	}
	return &Scheduler{
		recompute: NewDebouncer(window, recompute),
		observe:   NewDebouncer(window, observe),
	}
}

// Signal re-arms both debouncers
func (s *Scheduler) Signal() {
	s.recompute.Trigger()
	s.observe.Trigger()
}

// Stop cancels pending executions of both debouncers
func (s *Scheduler) Stop() {
	s.recompute.Stop()
	s.observe.Stop()
}
