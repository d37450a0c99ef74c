// Package clock provides an abstraction over deferred execution for testability.
// Production code uses RealClock, tests can inject a stand-in from clocktest.
package clock

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scorphus/hellotimer/internal/logger"
)

// ErrNilCallback is returned when a Call without a callback is scheduled.
var ErrNilCallback = errors.New("clock: nil callback")

// Clock provides an abstraction over time operations for testability.
type Clock interface {
	// AfterFunc waits for the duration to elapse and then runs call in its own goroutine.
	// Returns a Timer that can be used to cancel the call or wait for it to finish.
	AfterFunc(d time.Duration, call Call) (Timer, error)
	// Now returns the current time.
	Now() time.Time
}

// Timer represents a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the Timer from firing. Returns true if the call was stopped,
	// false if the timer has already expired or been stopped.
	Stop() bool
	// Wait blocks until the callback has returned or the timer was stopped.
	Wait()
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

// AfterFunc implements Clock.AfterFunc using time.AfterFunc.
// A panic in the callback is recovered and logged; Wait still returns.
func (c *RealClock) AfterFunc(d time.Duration, call Call) (Timer, error) {
	if !call.Valid() {
		return nil, ErrNilCallback
	}
	t := &realTimer{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
	logger.Debugf("Timer %s: %s scheduled in %s", t.id, call, d)

	t.mu.Lock()
	t.timer = time.AfterFunc(d, func() { t.fire(call) })
	t.mu.Unlock()
	return t, nil
}

// Now implements Clock.Now using time.Now.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// realTimer wraps time.Timer to implement Timer interface.
type realTimer struct {
	id    string
	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

func (t *realTimer) fire(call Call) {
	defer t.finish()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Timer %s: callback %s panicked: %v", t.id, call, r)
		}
	}()
	logger.Debugf("Timer %s fired", t.id)
	call.Invoke()
}

func (t *realTimer) finish() {
	t.once.Do(func() { close(t.done) })
}

// Stop implements Timer.Stop.
func (t *realTimer) Stop() bool {
	t.mu.Lock()
	stopped := t.timer.Stop()
	t.mu.Unlock()
	if stopped {
		t.finish()
		logger.Debugf("Timer %s stopped", t.id)
	}
	return stopped
}

// Wait implements Timer.Wait.
func (t *realTimer) Wait() {
	<-t.done
}
