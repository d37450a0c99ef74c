package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService exposes Prometheus metrics for scheduled greetings.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry *prometheus.Registry

	// Counters
	greetingsScheduled prometheus.Counter
	greetingsDelivered prometheus.Counter
	scheduleErrors     prometheus.Counter

	// Histograms
	scheduleWait prometheus.Histogram
}

// NewMetricsService creates the collectors and registers them on reg.
// A nil reg gets a fresh registry, so tests never collide on the global one.
func NewMetricsService(reg *prometheus.Registry) *MetricsService {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &MetricsService{
		registry: reg,

		greetingsScheduled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hellotimer_greetings_scheduled_total",
				Help: "Total number of greetings handed to the timer",
			},
		),

		greetingsDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hellotimer_greetings_delivered_total",
				Help: "Total number of greetings written to the output",
			},
		),

		scheduleErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hellotimer_schedule_errors_total",
				Help: "Total number of greetings the timer refused to schedule",
			},
		),

		scheduleWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hellotimer_schedule_wait_seconds",
				Help:    "Time spent blocked waiting for a scheduled greeting to fire",
				Buckets: prometheus.ExponentialBuckets(0.125, 2, 6), // 125ms to 4s
			},
		),
	}

	reg.MustRegister(
		m.greetingsScheduled,
		m.greetingsDelivered,
		m.scheduleErrors,
		m.scheduleWait,
	)

	return m
}

// GreetingScheduled counts a greeting accepted by the timer.
func (m *MetricsService) GreetingScheduled() {
	if m == nil {
		return
	}
	m.greetingsScheduled.Inc()
}

// GreetingDelivered counts a greeting written to the output.
func (m *MetricsService) GreetingDelivered() {
	if m == nil {
		return
	}
	m.greetingsDelivered.Inc()
}

// ScheduleFailed counts a greeting the timer could not schedule.
func (m *MetricsService) ScheduleFailed() {
	if m == nil {
		return
	}
	m.scheduleErrors.Inc()
}

// ObserveWait records how long a caller blocked on a scheduled greeting.
func (m *MetricsService) ObserveWait(d time.Duration) {
	if m == nil {
		return
	}
	m.scheduleWait.Observe(d.Seconds())
}

// WriteTextfile writes the current metrics to path in the text exposition format.
func (m *MetricsService) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
