package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultReportDir      = "./report"
	DefaultTimelineDir    = "./client/src"
	DefaultTableTimeLimit = 10
	DefaultGraphTimeLimit = 10
	DefaultWarning        = 5 * time.Minute
	DefaultCritical       = 10 * time.Minute
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvReportDir      = "TFANALYZE_REPORT_DIR"
	EnvTimelineDir    = "TFANALYZE_TIMELINE_DIR"
	EnvGraphTimeLimit = "TFANALYZE_GRAPH_TIME_LIMIT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Dir: DefaultReportDir,
		},
		Table: TableConfig{
			TimeLimit: DefaultTableTimeLimit,
		},
		Timeline: TimelineConfig{
			TimeLimit: DefaultGraphTimeLimit,
			Dir:       DefaultTimelineDir,
		},
		Thresholds: ThresholdConfig{
			Warning:  DefaultWarning,
			Critical: DefaultCritical,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if dir := os.Getenv(EnvReportDir); dir != "" {
		c.Report.Dir = dir
	}
	if dir := os.Getenv(EnvTimelineDir); dir != "" {
		c.Timeline.Dir = dir
	}
	if v := os.Getenv(EnvGraphTimeLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &EnvError{Name: EnvGraphTimeLimit, Value: v, Err: err}
		}
		c.Timeline.TimeLimit = n
	}
	return nil
}
