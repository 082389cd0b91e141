package study

import (
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer.
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks with time.AfterFunc. Callbacks run on
// their own goroutine.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler queues callbacks until they are fired explicitly. It lets
// callers drive transitions deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	owner   *ManualScheduler
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{owner: m, delay: d, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// Pending returns the number of queued callbacks that have not been stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// NextDelay returns the delay of the oldest queued callback.
func (m *ManualScheduler) NextDelay() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.pending {
		if !t.stopped {
			return t.delay, true
		}
	}
	return 0, false
}

// FireNext runs the oldest queued callback and reports whether one ran.
func (m *ManualScheduler) FireNext() bool {
	m.mu.Lock()
	var next *manualTimer
	for len(m.pending) > 0 {
		t := m.pending[0]
		m.pending = m.pending[1:]
		if !t.stopped {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	m.mu.Unlock()

	if next == nil {
		return false
	}
	next.fn()
	return true
}

// FireAll runs queued callbacks, including ones they schedule, until none
// remain. It returns the number of callbacks run.
func (m *ManualScheduler) FireAll() int {
	n := 0
	for m.FireNext() {
		n++
	}
	return n
}
