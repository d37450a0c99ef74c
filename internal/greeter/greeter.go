// Package greeter prints a greeting after a fixed delay.
package greeter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scorphus/hellotimer/internal/clock"
	"github.com/scorphus/hellotimer/internal/logger"
	"github.com/scorphus/hellotimer/internal/metrics"
)

// Delay is how long ScheduleGreeting waits before greeting.
const Delay = time.Second

// Greeter greets names, either right away or after Delay on its clock.
type Greeter struct {
	out     io.Writer
	clk     clock.Clock
	greet   func(name string) // action scheduled by ScheduleGreeting
	metrics *metrics.MetricsService
}

// New creates a Greeter writing to out (os.Stdout when nil). m may be nil.
// An optional Clock can be provided for testing; if none is provided, RealClock is used.
func New(out io.Writer, m *metrics.MetricsService, clocks ...clock.Clock) *Greeter {
	var c clock.Clock = clock.NewRealClock()
	if len(clocks) > 0 && clocks[0] != nil {
		c = clocks[0]
	}
	if out == nil {
		out = os.Stdout
	}
	g := &Greeter{
		out:     out,
		clk:     c,
		metrics: m,
	}
	g.greet = g.Greet
	return g
}

// Greet writes "Hello, <name>!" to the output.
func (g *Greeter) Greet(name string) {
	fmt.Fprintf(g.out, "Hello, %s!\n", name)
	g.metrics.GreetingDelivered()
}

// ScheduleGreeting arranges for name to be greeted once after Delay and blocks
// until the greeting has run. An error means the greeting was never scheduled.
func (g *Greeter) ScheduleGreeting(name string) error {
	start := g.clk.Now()
	timer, err := g.clk.AfterFunc(Delay, clock.Bind(g.greet, name))
	if err != nil {
		g.metrics.ScheduleFailed()
		return fmt.Errorf("failed to schedule greeting for %q: %w", name, err)
	}
	g.metrics.GreetingScheduled()
	logger.Debugf("Greeting for %q due at %s", name, start.Add(Delay).Format(time.RFC3339))

	timer.Wait()

	g.metrics.ObserveWait(g.clk.Now().Sub(start))
	return nil
}

var std = New(os.Stdout, nil)

// Greet greets name on stdout using the default Greeter.
func Greet(name string) {
	std.Greet(name)
}

// ScheduleGreeting greets name on stdout after Delay using the default Greeter.
func ScheduleGreeting(name string) error {
	return std.ScheduleGreeting(name)
}
