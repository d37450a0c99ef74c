package clock

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Call is a deferred invocation: a callback together with the positional
// arguments it will receive when it runs. Fn and Args are kept so that test
// doubles can assert on exactly what was scheduled.
type Call struct {
	Fn   any
	Args []any

	run func()
}

// Func builds a Call for a callback that takes no arguments.
func Func(f func()) Call {
	if f == nil {
		return Call{}
	}
	return Call{Fn: f, run: f}
}

// Bind builds a Call that will invoke f(arg).
func Bind[T any](f func(T), arg T) Call {
	if f == nil {
		return Call{}
	}
	return Call{Fn: f, Args: []any{arg}, run: func() { f(arg) }}
}

// Valid reports whether the Call has a callback to run.
func (c Call) Valid() bool {
	return c.run != nil
}

// Invoke runs the callback on the calling goroutine.
// A panic raised by the callback propagates to the caller.
func (c Call) Invoke() {
	if c.run == nil {
		panic(ErrNilCallback)
	}
	c.run()
}

// String renders the call as name(args...), e.g. main.greet("Neo").
func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprintf("%#v", a)
	}
	return funcName(c.Fn) + "(" + strings.Join(args, ", ") + ")"
}

// SameFunc reports whether a and b are the same function. Method values
// bound to different receivers of the same method compare equal.
func SameFunc(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func {
		return false
	}
	if va.IsNil() || vb.IsNil() {
		return va.IsNil() && vb.IsNil()
	}
	return va.Pointer() == vb.Pointer()
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return strings.TrimSuffix(f.Name(), "-fm")
	}
	return "<unknown>"
}
