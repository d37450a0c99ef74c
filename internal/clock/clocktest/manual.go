package clocktest

import (
	"slices"
	"sync"
	"time"

	"github.com/scorphus/hellotimer/internal/clock"
)

// Manual is a clock.Clock whose time only moves when the test says so.
// Scheduled calls run during Advance or FireAll, on the goroutine that called it.
type Manual struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	pending []*manualTimer
}

type manualTimer struct {
	clock     *Manual
	executeAt time.Time
	call      clock.Call
	stopped   bool // fired or stopped
	done      chan struct{}
	once      sync.Once
}

// Compile-time assertion that Manual implements clock.Clock
var _ clock.Clock = (*Manual)(nil)

// NewManual creates a Manual clock starting at the current time.
func NewManual() *Manual {
	return NewManualAt(time.Now())
}

// NewManualAt creates a Manual clock starting at t.
func NewManualAt(t time.Time) *Manual {
	m := &Manual{now: t}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules call to run once the clock has been advanced by d.
func (m *Manual) AfterFunc(d time.Duration, call clock.Call) (clock.Timer, error) {
	if !call.Valid() {
		return nil, clock.ErrNilCallback
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{
		clock:     m,
		executeAt: m.now.Add(d),
		call:      call,
		done:      make(chan struct{}),
	}
	m.pending = append(m.pending, t)
	m.cond.Broadcast()
	return t, nil
}

// Advance moves time forward by d and runs every call that has become due, in
// order of due time. Returns the number of calls run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now = m.now.Add(d)
	due := m.takeLocked(func(t *manualTimer) bool { return !t.executeAt.After(m.now) })
	m.mu.Unlock()

	return runAll(due)
}

// FireAll runs every pending call regardless of its due time.
func (m *Manual) FireAll() int {
	m.mu.Lock()
	due := m.takeLocked(func(*manualTimer) bool { return true })
	m.mu.Unlock()

	return runAll(due)
}

// PendingCount returns the number of calls that have neither run nor been stopped.
func (m *Manual) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// BlockUntil blocks until at least n calls are pending. Use it to wait for a
// goroutine to reach its AfterFunc before advancing the clock.
func (m *Manual) BlockUntil(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.pending) < n {
		m.cond.Wait()
	}
}

// takeLocked removes and marks the timers matching keep. m.mu must be held.
func (m *Manual) takeLocked(keep func(*manualTimer) bool) []*manualTimer {
	var due, rest []*manualTimer
	for _, t := range m.pending {
		if keep(t) {
			t.stopped = true
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.pending = rest
	slices.SortStableFunc(due, func(a, b *manualTimer) int {
		return a.executeAt.Compare(b.executeAt)
	})
	return due
}

// runAll executes outside the lock so callbacks may schedule again.
func runAll(due []*manualTimer) int {
	for _, t := range due {
		t.fire()
	}
	return len(due)
}

func (t *manualTimer) fire() {
	defer t.finish()
	t.call.Invoke()
}

func (t *manualTimer) finish() {
	t.once.Do(func() { close(t.done) })
}

// Stop prevents the timer from firing. Returns false if it already fired or was stopped.
func (t *manualTimer) Stop() bool {
	m := t.clock
	m.mu.Lock()
	if t.stopped {
		m.mu.Unlock()
		return false
	}
	t.stopped = true
	m.pending = slices.DeleteFunc(m.pending, func(p *manualTimer) bool { return p == t })
	m.mu.Unlock()

	t.finish()
	return true
}

// Wait blocks until the callback has returned or the timer was stopped.
func (t *manualTimer) Wait() {
	<-t.done
}
