// Package clocktest provides stand-ins for clock.Clock.
//
// Recorder runs every scheduled call immediately on the caller's goroutine and
// records it, so code that schedules and then waits on a timer finishes without
// any real delay. Manual holds calls until the test advances time.
package clocktest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scorphus/hellotimer/internal/clock"
)

// ScheduledCall is one AfterFunc invocation seen by a stand-in.
type ScheduledCall struct {
	Delay time.Duration
	Call  clock.Call
}

// Recorder is a synchronous clock.Clock. AfterFunc records the call, invokes it
// before returning, and hands back a StubTimer.
type Recorder struct {
	mu     sync.Mutex
	now    time.Time
	calls  []ScheduledCall
	timers []*StubTimer
}

// Compile-time assertion that Recorder implements clock.Clock
var _ clock.Clock = (*Recorder)(nil)

// NewRecorder creates a Recorder whose Now is fixed at the current time.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now()}
}

// AfterFunc records the call and runs it right away, ignoring d.
// A panic in the callback propagates to the caller.
func (r *Recorder) AfterFunc(d time.Duration, call clock.Call) (clock.Timer, error) {
	r.mu.Lock()
	r.calls = append(r.calls, ScheduledCall{Delay: d, Call: call})
	r.mu.Unlock()

	if !call.Valid() {
		return nil, clock.ErrNilCallback
	}
	call.Invoke()

	timer := &StubTimer{}
	r.mu.Lock()
	r.timers = append(r.timers, timer)
	r.mu.Unlock()
	return timer, nil
}

// Now returns the recorder's fixed time.
func (r *Recorder) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// SetNow sets the time returned by Now.
func (r *Recorder) SetNow(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = t
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []ScheduledCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScheduledCall(nil), r.calls...)
}

// CallCount returns the number of AfterFunc invocations.
func (r *Recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Timers returns the placeholders handed out so far.
func (r *Recorder) Timers() []*StubTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*StubTimer(nil), r.timers...)
}

// Reset clears the recorded calls and timers.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.timers = nil
}

// AssertCalledOnceWith asserts that exactly one call was scheduled, with delay
// d, callback fn and exactly args.
func (r *Recorder) AssertCalledOnceWith(t assert.TestingT, d time.Duration, fn any, args ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	calls := r.Calls()
	if !assert.Len(t, calls, 1, "expected exactly one scheduled call") {
		return false
	}
	got := calls[0]
	ok := assert.Equal(t, d, got.Delay, "scheduled delay")
	ok = assert.True(t, clock.SameFunc(got.Call.Fn, fn), "scheduled callback is %s", got.Call) && ok
	ok = assert.Equal(t, args, got.Call.Args, "scheduled arguments") && ok
	return ok
}

// StubTimer is the inert handle returned by Recorder. Its methods never fail;
// calls to them are counted for assertions.
type StubTimer struct {
	mu    sync.Mutex
	stops int
	waits int
}

// Compile-time assertion that StubTimer implements clock.Timer
var _ clock.Timer = (*StubTimer)(nil)

// Stop always reports false: the call already ran.
func (s *StubTimer) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return false
}

// Wait returns immediately.
func (s *StubTimer) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits++
}

// StopCalls returns how many times Stop was called.
func (s *StubTimer) StopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// WaitCalls returns how many times Wait was called.
func (s *StubTimer) WaitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waits
}

// Install replaces *target with a new Recorder and returns it along with a
// restore func that puts the original back. restore is safe to call more than once.
func Install(target *clock.Clock) (*Recorder, func()) {
	if target == nil {
		panic("clocktest: nil interception target")
	}
	original := *target
	rec := NewRecorder()
	*target = rec

	var once sync.Once
	return rec, func() {
		once.Do(func() { *target = original })
	}
}

// Intercept installs a Recorder in *target for the rest of the test. The
// original clock is restored by t.Cleanup, which also runs after FailNow or a panic.
func Intercept(t testing.TB, target *clock.Clock) *Recorder {
	t.Helper()
	if target == nil {
		t.Fatal("clocktest: nil interception target")
	}
	rec, restore := Install(target)
	t.Cleanup(restore)
	return rec
}

// Wrap returns a test function for t.Run that intercepts *target and passes
// the Recorder to body.
func Wrap(target *clock.Clock, body func(t *testing.T, rec *Recorder)) func(t *testing.T) {
	return func(t *testing.T) {
		t.Helper()
		body(t, Intercept(t, target))
	}
}
