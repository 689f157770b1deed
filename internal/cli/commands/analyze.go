package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/pkg/analyzer"
	"github.com/ccollicutt/tfanalyze/pkg/config"
	"github.com/ccollicutt/tfanalyze/pkg/logger"
	"github.com/ccollicutt/tfanalyze/pkg/output"
	"github.com/ccollicutt/tfanalyze/pkg/parser"
	"github.com/ccollicutt/tfanalyze/pkg/timeline"
	"github.com/ccollicutt/tfanalyze/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigFile     string
	Output         string
	ReportDir      string
	NoReport       bool
	WithGraph      bool
	GraphTimeLimit int
	TimelineDir    string
	TableTimeLimit int
	Passthrough    bool
	Quiet          bool
	FailOnSlow     bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [output-file...]",
		Short: "Analyze terraform apply output",
		Long: `Analyze the console output of a terraform apply.

Reads stdin when no files are given (echoing it to stdout so the apply stays
visible), or the given files and globs in sorted order. Prints the resources
that took longest to create, writes an HTML report with one page per
resource, and optionally exports timeline data for 'tfanalyze timeline serve'.

Example:
  terraform apply -auto-approve | tfanalyze analyze
  tfanalyze analyze -g -t 30 apply.log
  tfanalyze analyze -o json --no-report 'logs/*.log'

Exit codes:
  0 - Analysis completed
  1 - A resource exceeded the critical threshold (with --fail-on-slow)
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.ReportDir, "report-dir", config.DefaultReportDir, "Directory for the HTML report")
	cmd.Flags().BoolVar(&opts.NoReport, "no-report", false, "Skip writing the HTML report")
	cmd.Flags().BoolVarP(&opts.WithGraph, "with-graph", "g", false, "Export timeline data")
	cmd.Flags().IntVarP(&opts.GraphTimeLimit, "graph-time-limit", "t", config.DefaultGraphTimeLimit, "Only export resources slower than this many seconds")
	cmd.Flags().StringVar(&opts.TimelineDir, "timeline-dir", config.DefaultTimelineDir, "Directory for the timeline export")
	cmd.Flags().IntVar(&opts.TableTimeLimit, "table-time-limit", config.DefaultTableTimeLimit, "Only list resources slower than this many seconds")
	cmd.Flags().BoolVar(&opts.Passthrough, "passthrough", true, "Echo stdin to stdout while reading it")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.FailOnSlow, "fail-on-slow", false, "Exit 1 when a resource exceeds the critical threshold")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnSlow), "When to fire webhook (on_slow|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := commandContext(cmd)

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyAnalyzeFlags(cmd, cfg, opts); err != nil {
		return err
	}

	formatter, ok := output.NewFormatter(opts.Output, output.FormatOptions{
		Quiet:     opts.Quiet,
		TimeLimit: cfg.Table.TimeLimit,
	})
	if !ok {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	stdout := cmd.OutOrStdout()
	stdin := func() parser.LineSource {
		var r io.Reader = cmd.InOrStdin()
		// JSON output owns stdout, so the echo is dropped there.
		if opts.Passthrough && formatter.Name() == "text" {
			r = io.TeeReader(r, stdout)
		}
		return parser.NewReaderSource(parser.StdinName, r)
	}

	source, inputs, err := parser.OpenSource(args, stdin)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer source.Close()
	log.Debug("reading input", "inputs", inputs)

	a := analyzer.NewAnalyzer(
		analyzer.WithLayouts(cfg.TimestampLayouts),
		analyzer.WithLogger(log),
		analyzer.WithConfigFile(opts.ConfigFile),
	)

	result, err := a.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to analyze terraform output: %w", err)
	}

	report := output.NewReport(result, output.Thresholds{
		Warning:  cfg.Thresholds.Warning,
		Critical: cfg.Thresholds.Critical,
	})
	log = log.WithRunID(report.Metadata.RunID)

	if err := formatter.Format(ctx, report, stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if err := writeArtifacts(ctx, cfg, result, report, log); err != nil {
		return err
	}

	// Webhook failures are logged and never fail the analysis.
	webhook.NewDispatcher(nil, cfg.Webhooks, log).Dispatch(ctx, report)

	if opts.FailOnSlow && report.HasSlow() {
		ExitCode = 1
	}

	return nil
}

// applyAnalyzeFlags overlays explicitly set flags on the loaded
// configuration and validates the result.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *AnalyzeOptions) error {
	flags := cmd.Flags()

	if flags.Changed("report-dir") {
		cfg.Report.Dir = opts.ReportDir
	}
	if opts.NoReport {
		cfg.Report.Disabled = true
	}
	if opts.WithGraph {
		cfg.Timeline.Enabled = true
	}
	if flags.Changed("graph-time-limit") {
		cfg.Timeline.TimeLimit = opts.GraphTimeLimit
	}
	if flags.Changed("timeline-dir") {
		cfg.Timeline.Dir = opts.TimelineDir
	}
	if flags.Changed("table-time-limit") {
		cfg.Table.TimeLimit = opts.TableTimeLimit
	}

	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// writeArtifacts writes the HTML report and timeline export enabled in cfg.
func writeArtifacts(ctx context.Context, cfg *config.Config, result *analyzer.AnalysisResult, report *output.Report, log *logger.Logger) error {
	if !cfg.Report.Disabled {
		writer := output.NewHTMLWriter(cfg.Report.Dir)
		if err := output.EnsureDir(writer.Dir()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		files, err := writer.Write(ctx, report)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		log.Info("report written", "dir", writer.Dir(), "files", len(files))
	}

	if cfg.Timeline.Enabled {
		exp := timeline.Build(result.Records, cfg.Timeline.TimeLimit)
		files, err := exp.Write(cfg.Timeline.Dir)
		if err != nil {
			return fmt.Errorf("writing timeline: %w", err)
		}
		log.Info("timeline exported", "dir", cfg.Timeline.Dir, "items", len(exp.Items), "files", len(files))
	}

	return nil
}
