package clocktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorphus/hellotimer/internal/clock"
)

// fakeT captures assertion failures so negative paths of the helpers can be tested.
type fakeT struct {
	errors []string
}

func (f *fakeT) Errorf(format string, args ...interface{}) {
	f.errors = append(f.errors, format)
}

func hello(name string) {}

// =============================================================================
// Recorder tests
// =============================================================================

func TestRecorder_RunsCallSynchronously(t *testing.T) {
	rec := NewRecorder()

	var got []string
	timer, err := rec.AfterFunc(time.Hour, clock.Bind(func(name string) { got = append(got, name) }, "Neo"))
	require.NoError(t, err)
	require.NotNil(t, timer)

	// No waiting: the callback has already run by the time AfterFunc returns
	assert.Equal(t, []string{"Neo"}, got)
	assert.Equal(t, 1, rec.CallCount())
}

func TestRecorder_RecordsExactCall(t *testing.T) {
	rec := NewRecorder()

	_, err := rec.AfterFunc(time.Second, clock.Bind(hello, "Neo"))
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, time.Second, calls[0].Delay)
	assert.True(t, clock.SameFunc(hello, calls[0].Call.Fn))
	assert.Equal(t, []any{"Neo"}, calls[0].Call.Args)

	assert.True(t, rec.AssertCalledOnceWith(t, time.Second, hello, "Neo"))
}

func TestRecorder_AssertCalledOnceWith_Mismatches(t *testing.T) {
	other := func(string) {}

	tests := []struct {
		name  string
		calls int
		delay time.Duration
		fn    any
		args  []any
	}{
		{"no calls", 0, time.Second, hello, []any{"Neo"}},
		{"two calls", 2, time.Second, hello, []any{"Neo"}},
		{"wrong delay", 1, time.Minute, hello, []any{"Neo"}},
		{"wrong callback", 1, time.Second, other, []any{"Neo"}},
		{"wrong args", 1, time.Second, hello, []any{"Trinity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			for i := 0; i < tt.calls; i++ {
				_, err := rec.AfterFunc(time.Second, clock.Bind(hello, "Neo"))
				require.NoError(t, err)
			}

			ft := &fakeT{}
			assert.False(t, rec.AssertCalledOnceWith(ft, tt.delay, tt.fn, tt.args...))
			assert.NotEmpty(t, ft.errors)
		})
	}
}

func TestRecorder_NilCallbackIsRecordedAndRejected(t *testing.T) {
	rec := NewRecorder()

	var f func(string)
	timer, err := rec.AfterFunc(time.Second, clock.Bind(f, "Neo"))

	assert.ErrorIs(t, err, clock.ErrNilCallback)
	assert.Nil(t, timer)
	assert.Equal(t, 1, rec.CallCount())
	assert.Empty(t, rec.Timers())
}

func TestRecorder_CallbackPanicPropagates(t *testing.T) {
	rec := NewRecorder()

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = rec.AfterFunc(time.Second, clock.Func(func() { panic("boom") }))
	})
	assert.Equal(t, 1, rec.CallCount())
}

func TestRecorder_PlaceholderTimerIsInert(t *testing.T) {
	rec := NewRecorder()

	timer, err := rec.AfterFunc(time.Second, clock.Func(func() {}))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.False(t, timer.Stop())
		timer.Wait()
		timer.Wait()
	})

	timers := rec.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, 1, timers[0].StopCalls())
	assert.Equal(t, 2, timers[0].WaitCalls())
}

func TestRecorder_NowAndReset(t *testing.T) {
	rec := NewRecorder()
	fixed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.SetNow(fixed)

	_, err := rec.AfterFunc(time.Second, clock.Func(func() {}))
	require.NoError(t, err)

	assert.Equal(t, fixed, rec.Now())
	rec.Reset()
	assert.Zero(t, rec.CallCount())
	assert.Empty(t, rec.Timers())
}

// =============================================================================
// Install / Intercept / Wrap tests
// =============================================================================

type holder struct {
	clk clock.Clock
}

func TestInstall_RestoresOnPanic(t *testing.T) {
	original := clock.NewRealClock()
	h := &holder{clk: original}

	func() {
		defer func() { _ = recover() }()
		rec, restore := Install(&h.clk)
		defer restore()

		assert.Same(t, rec, h.clk)
		panic("test body failed")
	}()

	assert.Same(t, original, h.clk)
}

func TestInstall_RestoreIsIdempotent(t *testing.T) {
	original := clock.NewRealClock()
	h := &holder{clk: original}

	_, restore := Install(&h.clk)
	restore()

	// A later substitution must survive a second call to the first restore
	replacement := NewRecorder()
	h.clk = replacement
	restore()

	assert.Same(t, replacement, h.clk)
}

func TestInstall_NilTargetPanics(t *testing.T) {
	assert.Panics(t, func() { Install(nil) })
}

func TestIntercept_ScopedToSubtest(t *testing.T) {
	original := clock.NewRealClock()
	h := &holder{clk: original}

	t.Run("intercepted", func(t *testing.T) {
		rec := Intercept(t, &h.clk)
		assert.Same(t, rec, h.clk)
	})

	assert.Same(t, original, h.clk)
}

func TestWrap_PassesRecorderToBody(t *testing.T) {
	original := clock.NewRealClock()
	h := &holder{clk: original}

	var seen *Recorder
	t.Run("wrapped", Wrap(&h.clk, func(t *testing.T, rec *Recorder) {
		seen = rec
		assert.Same(t, rec, h.clk)

		_, err := h.clk.AfterFunc(time.Second, clock.Bind(hello, "Neo"))
		require.NoError(t, err)
		rec.AssertCalledOnceWith(t, time.Second, hello, "Neo")
	}))

	require.NotNil(t, seen)
	assert.Equal(t, 1, seen.CallCount())
	assert.Same(t, original, h.clk)
}
