package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scorphus/hellotimer/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 0, run([]string{"-v"}))
}

func TestRun_UnknownFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-no-such-flag"}))
}

func TestRun_GreetsAndWritesMetrics(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the real one-second delay")
	}
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "hellotimer.prom")

	status := run([]string{"-name", "Neo", "-log-dir", filepath.Join(dir, "logs"), "-metrics-file", metricsFile})
	require.Equal(t, 0, status)

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hellotimer_greetings_scheduled_total 1")
	assert.Contains(t, string(content), "hellotimer_greetings_delivered_total 1")
	assert.FileExists(t, filepath.Join(dir, "logs", "hellotimer.log"))
}

func TestRun_LogsOpenedLogDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the real one-second delay")
	}
	logDir := filepath.Join(t.TempDir(), "logs")

	require.Equal(t, 0, run([]string{"-log-level", "debug", "-log-dir", logDir}))

	content, err := os.ReadFile(filepath.Join(logDir, logger.LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Log Directory: "+logDir)
	assert.Empty(t, logger.GetLogDir(), "run should close the log file on exit")
}
