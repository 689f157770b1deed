package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a tfanalyze configuration file without running analysis.

Checks:
  - YAML syntax
  - Timestamp layouts are not empty
  - Report and timeline directories
  - Threshold ordering (warning <= critical)
  - Webhook URLs and triggers

Prints the effective configuration, with environment overrides applied.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	printEffectiveConfig(w, cfg)

	return nil
}

func printEffectiveConfig(w io.Writer, cfg *config.Config) {
	layouts := "(parser defaults)"
	if len(cfg.TimestampLayouts) > 0 {
		layouts = strings.Join(cfg.TimestampLayouts, ", ")
	}

	report := cfg.Report.Dir
	if cfg.Report.Disabled {
		report = "disabled"
	}

	timeline := "disabled"
	if cfg.Timeline.Enabled {
		timeline = fmt.Sprintf("%s (resources over %ds)", cfg.Timeline.Dir, cfg.Timeline.TimeLimit)
	}

	fmt.Fprintf(w, "  Timestamp layouts: %s\n", layouts)
	fmt.Fprintf(w, "  Report:            %s\n", report)
	fmt.Fprintf(w, "  Table:             resources over %ds\n", cfg.Table.TimeLimit)
	fmt.Fprintf(w, "  Timeline:          %s\n", timeline)
	fmt.Fprintf(w, "  Thresholds:        warning %s, critical %s\n", cfg.Thresholds.Warning, cfg.Thresholds.Critical)
	fmt.Fprintf(w, "  Webhooks:          %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		auth := ""
		if wh.Token != "" {
			auth = ", token set"
		}
		fmt.Fprintf(w, "    %d. %s [%s, timeout %s%s]\n", i+1, name, wh.Trigger, wh.Timeout, auth)
	}
}
