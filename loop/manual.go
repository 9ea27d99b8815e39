package loop

import (
	"errors"
	"time"
)

// ErrRunning is returned when Run is called on a loop that is already running.
var ErrRunning = errors.New("loop: already running")

// Manual is a Scheduler driven by a virtual clock. Nothing fires until
// Advance is called, which makes timer-driven code testable without sleeps.
type Manual struct {
	now    time.Duration
	timers []*manualTimer
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	interval time.Duration
	next     time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() { t.stopped = true }

// Every registers fn to fire every interval of virtual time.
func (m *Manual) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := &manualTimer{interval: interval, next: m.now + interval, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the virtual clock forward by d, firing due timers in
// chronological order. Timers registered while advancing fire too once due.
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d
	for {
		t := m.due(end)
		if t == nil {
			break
		}
		m.now = t.next
		t.next += t.interval
		t.fn()
	}
	m.now = end
	m.compact()
}

// Fire fires every live timer once, in registration order, without moving
// the clock.
func (m *Manual) Fire() {
	for _, t := range append([]*manualTimer(nil), m.timers...) {
		if !t.stopped {
			t.fn()
		}
	}
	m.compact()
}

// Active returns the number of live timers.
func (m *Manual) Active() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Now returns the virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

func (m *Manual) due(end time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.next > end {
			continue
		}
		if next == nil || t.next < next.next {
			next = t
		}
	}
	return next
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
}
