// Package loop runs the visualizer's callbacks on a single goroutine.
//
// Mouse input, drag ticks, frame ticks and animation steps are all posted to
// one Loop and executed in order, so the scene and graph never need locks.
// Timers fire on their own goroutines but only ever enqueue work; the work
// itself runs on the loop.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle on a periodic callback.
type Timer interface {
	Stop()
}

// Scheduler starts periodic callbacks.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// Loop is a cooperative single-goroutine executor.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	timers  map[*ticker]struct{}
	running atomic.Bool
}

// New creates an idle loop. Call Run to start executing callbacks.
func New() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		timers: make(map[*ticker]struct{}),
	}
}

// Post enqueues fn. It never blocks and is safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Every posts fn to the loop once per interval until the timer is stopped.
// Ticks already queued when Stop is called are dropped.
func (l *Loop) Every(interval time.Duration, fn func()) Timer {
	t := &ticker{loop: l, fn: fn, done: make(chan struct{})}

	l.mu.Lock()
	l.timers[t] = struct{}{}
	l.mu.Unlock()

	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				l.Post(t.fire)
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// Active returns the number of timers that have not been stopped.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Run executes posted callbacks until ctx is done. Live timers are stopped
// on return.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)
	defer l.Close()

	for {
		for _, fn := range l.drain() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops every live timer.
func (l *Loop) Close() {
	l.mu.Lock()
	timers := make([]*ticker, 0, len(l.timers))
	for t := range l.timers {
		timers = append(timers, t)
	}
	l.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.pending
	l.pending = nil
	return batch
}

type ticker struct {
	loop    *Loop
	fn      func()
	done    chan struct{}
	stopped atomic.Bool
}

func (t *ticker) fire() {
	if t.stopped.Load() {
		return
	}
	t.fn()
}

// Stop cancels the timer. It is idempotent.
func (t *ticker) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	close(t.done)

	t.loop.mu.Lock()
	delete(t.loop.timers, t)
	t.loop.mu.Unlock()
}
