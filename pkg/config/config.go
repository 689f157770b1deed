package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvError reports an environment override that could not be applied.
type EnvError struct {
	Name  string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("environment %s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

// Load reads and validates a configuration file.
// An empty path returns the defaults with environment overrides applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}

		// Tokens are expanded once, here, so re-validating is safe.
		for i := range cfg.Webhooks {
			cfg.Webhooks[i].Token = expandEnvVar(cfg.Webhooks[i].Token)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults for
// optional webhook fields.
func Validate(cfg *Config) error {
	for i, layout := range cfg.TimestampLayouts {
		if strings.TrimSpace(layout) == "" {
			return fmt.Errorf("timestamp_layouts[%d]: layout is empty", i)
		}
	}

	if !cfg.Report.Disabled && cfg.Report.Dir == "" {
		return errors.New("report.dir: required unless report.disabled is set")
	}

	if cfg.Table.TimeLimit < 0 {
		return fmt.Errorf("table.time_limit: must be >= 0, got %d", cfg.Table.TimeLimit)
	}

	if cfg.Timeline.TimeLimit < 0 {
		return fmt.Errorf("timeline.time_limit: must be >= 0, got %d", cfg.Timeline.TimeLimit)
	}
	if cfg.Timeline.Enabled && cfg.Timeline.Dir == "" {
		return errors.New("timeline.dir: required when timeline.enabled is set")
	}

	if err := validateThresholds(&cfg.Thresholds); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateThresholds(th *ThresholdConfig) error {
	if th.Warning <= 0 {
		return fmt.Errorf("warning must be positive, got %s", th.Warning)
	}
	if th.Critical <= 0 {
		return fmt.Errorf("critical must be positive, got %s", th.Critical)
	}
	if th.Warning > th.Critical {
		return fmt.Errorf("warning (%s) must not exceed critical (%s)", th.Warning, th.Critical)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnSlow
	case WebhookTriggerOnSlow, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_slow, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
