// Package debounce provides a trailing-edge debouncer for keystroke driven work.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the pause required after the last keystroke
const DefaultDelay = 300 * time.Millisecond

// Debouncer delays fn until calls have paused for the configured delay.
// Only the last call inside a window runs, with that call's argument; earlier
// pending calls are discarded.
type Debouncer[T any] struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	fn      func(T)
	pending T
	gen     uint64
	stopped bool
}

// New creates a debouncer. A non-positive delay falls back to DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call schedules fn(arg), replacing any invocation still waiting.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = arg
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs the pending call unless a newer Call or Stop superseded it. A timer
// whose Stop lost the race still observes a stale generation and does nothing.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	arg := d.pending
	var zero T
	d.pending = zero
	d.timer = nil
	d.mu.Unlock()

	d.fn(arg)
}

// Stop discards any pending invocation and ignores further calls.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
