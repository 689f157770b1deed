// Package config provides configuration loading and validation for tfanalyze.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// TimestampLayouts are Go time layouts tried against the leading
	// bracketed token of each line. Empty means the parser defaults.
	TimestampLayouts []string `yaml:"timestamp_layouts,omitempty"`

	Report     ReportConfig    `yaml:"report"`
	Table      TableConfig     `yaml:"table"`
	Timeline   TimelineConfig  `yaml:"timeline"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Webhooks   []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ReportConfig controls the HTML report pages.
type ReportConfig struct {
	// Dir is where index.html and the per-resource pages are written.
	Dir string `yaml:"dir"`

	// Disabled skips writing the HTML report.
	Disabled bool `yaml:"disabled,omitempty"`
}

// TableConfig controls the terminal summary table.
type TableConfig struct {
	// TimeLimit is the elapsed time, in seconds, a resource must exceed to
	// be listed.
	TimeLimit int `yaml:"time_limit"`
}

// TimelineConfig controls the timeline export.
type TimelineConfig struct {
	// Enabled writes result.json and groups.json after analysis.
	Enabled bool `yaml:"enabled,omitempty"`

	// TimeLimit is the elapsed time, in seconds, a resource must exceed to
	// be exported.
	TimeLimit int `yaml:"time_limit"`

	// Dir is where the timeline files are written and served from.
	Dir string `yaml:"dir"`
}

// ThresholdConfig defines the colour bands for elapsed times.
type ThresholdConfig struct {
	// Warning marks resources slower than this as yellow.
	Warning time.Duration `yaml:"warning"`

	// Critical marks resources slower than this as red.
	Critical time.Duration `yaml:"critical"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnSlow fires only when a resource exceeds the critical threshold (default).
	WebhookTriggerOnSlow WebhookTrigger = "on_slow"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_slow" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
