package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsService_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsService(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"hellotimer_greetings_scheduled_total",
		"hellotimer_greetings_delivered_total",
		"hellotimer_schedule_errors_total",
		"hellotimer_schedule_wait_seconds",
	}, names)
}

func TestNewMetricsService_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		// Two services must not collide when each gets its own registry
		NewMetricsService(nil)
		NewMetricsService(nil)
	})
}

func TestMetricsService_Counters(t *testing.T) {
	m := NewMetricsService(nil)

	m.GreetingScheduled()
	m.GreetingScheduled()
	m.GreetingDelivered()
	m.ScheduleFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.greetingsScheduled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.greetingsDelivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduleErrors))
}

func TestMetricsService_ObserveWait(t *testing.T) {
	m := NewMetricsService(nil)

	m.ObserveWait(time.Second)
	m.ObserveWait(250 * time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.scheduleWait))
}

func TestMetricsService_NilIsNoop(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.GreetingScheduled()
		m.GreetingDelivered()
		m.ScheduleFailed()
		m.ObserveWait(time.Second)
	})
}

func TestMetricsService_WriteTextfile(t *testing.T) {
	m := NewMetricsService(nil)
	m.GreetingDelivered()

	path := filepath.Join(t.TempDir(), "hellotimer.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hellotimer_greetings_delivered_total 1")
}
