package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scorphus/hellotimer/internal/clock"
	"github.com/scorphus/hellotimer/internal/config"
	"github.com/scorphus/hellotimer/internal/greeter"
	"github.com/scorphus/hellotimer/internal/logger"
	"github.com/scorphus/hellotimer/internal/metrics"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hellotimer", flag.ContinueOnError)

	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.BoolVar(showVersion, "v", false, "Print version and exit (shorthand)")

	// Configuration flags - all can also be set via environment variables (HELLOTIMER_*)
	flagName := fs.String("name", "", "Who to greet (env: HELLOTIMER_NAME, default: World)")
	flagLogLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (env: HELLOTIMER_LOG_LEVEL, default: info)")
	flagLogDir := fs.String("log-dir", "", "Directory for the rotating log file (env: HELLOTIMER_LOG_DIR)")
	flagMetricsFile := fs.String("metrics-file", "", "Write Prometheus metrics to this file on exit (env: HELLOTIMER_METRICS_FILE)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Printf("hellotimer %s\n", config.Version)
		return 0
	}

	config.Load()

	overrides := config.FlagOverrides{
		LogLevel:    flagLogLevel,
		LogDir:      flagLogDir,
		MetricsFile: flagMetricsFile,
	}
	// -name "" is a legitimate request to greet nobody, so only pass it when given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "name" {
			overrides.Name = flagName
		}
	})
	config.ApplyFlags(overrides)
	cfg := config.Get()

	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Warnf("Failed to initialize log file, logging to stdout only: %v", err)
	}
	defer logger.Close()
	logger.SetLevel(cfg.LogLevel)

	logger.Infof("Starting hellotimer %s", config.Version)
	logger.Debugf("  Name: %q", cfg.Name)
	logger.Debugf("  Log Level: %s", cfg.LogLevel)
	if dir := logger.GetLogDir(); dir != "" {
		logger.Debugf("  Log Directory: %s", dir)
	}

	reg := prometheus.NewRegistry()
	metricsService := metrics.NewMetricsService(reg)
	g := greeter.New(os.Stdout, metricsService, clock.NewRealClock())

	status := 0
	if err := g.ScheduleGreeting(cfg.Name); err != nil {
		logger.Errorf("Greeting failed: %v", err)
		status = 1
	}

	if cfg.MetricsFile != "" {
		if err := metricsService.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Errorf("Failed to write metrics to %s: %v", cfg.MetricsFile, err)
			status = 1
		} else {
			logger.Debugf("Metrics written to %s", cfg.MetricsFile)
		}
	}
	return status
}
