package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/pkg/analyzer"
	"github.com/ccollicutt/tfanalyze/pkg/config"
	"github.com/ccollicutt/tfanalyze/pkg/detector"
	"github.com/ccollicutt/tfanalyze/pkg/parser"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// Diagnostic statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigFile string
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <output-file...>",
		Short: "Explain how captured output was parsed",
		Long: `Diagnose how tfanalyze reads captured terraform output.

Checks:
  - Config file syntax and values (with --config)
  - Input file existence
  - Timestamp layout against the first input file
  - Lines that were not attributed to a resource
  - Completion and Executing lines that could not be parsed
  - Resources that never reported completion

Example:
  tfanalyze diagnose apply.log
  tfanalyze diagnose -v -c tfanalyze.yaml 'logs/*.log'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, inputs []string, opts *DiagnoseOptions) error {
	var results []DiagnosticResult

	cfg, result := checkConfig(ctx, opts.ConfigFile)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	files, inputResults := checkInputs(inputs)
	results = append(results, inputResults...)
	if len(files) == 0 {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkTimestampLayout(ctx, cfg, files[0]))
	results = append(results, checkParse(ctx, cfg, files)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{Check: "Config"}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if errors.Is(err, fs.ErrNotExist) {
			result.Suggests = []string{
				"Check the file path is correct",
				"Use 'tfanalyze detect <output-file> --write-config tfanalyze.yaml' to generate a starter config",
			}
		} else if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = StatusOK
	if path == "" {
		result.Message = "No config file given, using defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	result.Details = []string{
		fmt.Sprintf("Timestamp layouts: %s", strings.Join(effectiveLayouts(cfg), ", ")),
		fmt.Sprintf("Thresholds: warning %s, critical %s", cfg.Thresholds.Warning, cfg.Thresholds.Critical),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkInputs(inputs []string) ([]string, []DiagnosticResult) {
	files, err := parser.ExpandInputs(inputs)
	if err != nil {
		return nil, []DiagnosticResult{{
			Check:   "Inputs",
			Status:  StatusError,
			Message: err.Error(),
		}}
	}

	var results []DiagnosticResult
	var usable []string
	for _, file := range files {
		result := DiagnosticResult{Check: fmt.Sprintf("Input: %s", file)}

		info, err := os.Stat(file)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Status = StatusError
			result.Message = "File does not exist"
			result.Suggests = []string{"Check the path or quote the glob so the shell does not expand it"}
		case err != nil:
			result.Status = StatusError
			result.Message = fmt.Sprintf("Cannot access file: %v", err)
		case info.IsDir():
			result.Status = StatusError
			result.Message = "Path is a directory, not a file"
			result.Suggests = []string{"Use a glob pattern, for example 'logs/*.log'"}
		case info.Size() == 0:
			result.Status = StatusWarning
			result.Message = "File is empty (0 bytes)"
		default:
			result.Status = StatusOK
			result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
			usable = append(usable, file)
		}
		results = append(results, result)
	}

	if len(usable) == 0 {
		results = append(results, DiagnosticResult{
			Check:    "Inputs Summary",
			Status:   StatusError,
			Message:  "No readable input files found",
			Suggests: []string{"Save the apply output first, for example 'terraform apply | tee apply.log'"},
		})
	}

	return usable, results
}

func checkTimestampLayout(ctx context.Context, cfg *config.Config, file string) DiagnosticResult {
	result := DiagnosticResult{Check: "Timestamp Layout"}

	det, err := detector.New().DetectFromFile(ctx, file)
	if err != nil {
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("Cannot sample file: %v", err)
		return result
	}

	if !det.HasMatch() {
		result.Status = StatusWarning
		result.Message = "No timestamped lines found"
		result.Details = []string{
			"Without timestamps every start and end time falls back to the last seen time, and elapsed comes only from completion messages",
		}
		return result
	}

	configured := effectiveLayouts(cfg)
	for _, layout := range det.Layouts() {
		for _, c := range configured {
			if layout == c {
				result.Status = StatusOK
				result.Message = fmt.Sprintf("Configured layout %q parses the sampled timestamps", layout)
				return result
			}
		}
	}

	best := det.BestMatch()
	result.Status = StatusError
	result.Message = "No configured layout matches the sampled timestamps"
	result.Details = []string{"Sample line:", truncate(best.SampleLine, 80)}
	result.Suggests = []string{
		fmt.Sprintf("Detected format: %s", best.Format.Name),
		fmt.Sprintf("Add to timestamp_layouts: %q", best.Format.Layout),
	}
	return result
}

func checkParse(ctx context.Context, cfg *config.Config, files []string) []DiagnosticResult {
	source := parser.NewFileSource(files)
	defer source.Close()

	res, err := analyzer.NewAnalyzer(analyzer.WithLayouts(cfg.TimestampLayouts)).Analyze(ctx, source)
	if err != nil {
		return []DiagnosticResult{{
			Check:   "Parse",
			Status:  StatusError,
			Message: fmt.Sprintf("Analysis failed: %v", err),
		}}
	}

	var results []DiagnosticResult
	meta := res.Metadata

	parse := DiagnosticResult{
		Check:   "Parse",
		Status:  StatusOK,
		Message: fmt.Sprintf("%d lines, %d resources", meta.LinesProcessed, len(res.Records)),
	}
	for _, o := range sortedOutcomes(meta.Outcomes) {
		parse.Details = append(parse.Details, fmt.Sprintf("%s: %d", o, meta.Outcomes[o]))
	}
	if len(res.Records) == 0 {
		parse.Status = StatusWarning
		parse.Suggests = []string{"No line looked like '<resource>: <message>'; check the input is terraform apply output"}
	}
	results = append(results, parse)

	malformed := meta.Count(state.OutcomeCompletionMalformed) + meta.Count(state.OutcomeExecutingMalformed)
	if malformed > 0 {
		results = append(results, DiagnosticResult{
			Check:   "Malformed Lines",
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d completion or Executing line(s) could not be parsed", malformed),
			Details: []string{
				fmt.Sprintf("completion without duration: %d", meta.Count(state.OutcomeCompletionMalformed)),
				fmt.Sprintf("Executing without command: %d", meta.Count(state.OutcomeExecutingMalformed)),
			},
		})
	}

	incomplete := DiagnosticResult{Check: "Completion", Status: StatusOK}
	if keys := res.Incomplete(); len(keys) > 0 {
		incomplete.Status = StatusWarning
		incomplete.Message = fmt.Sprintf("%d resource(s) never reported 'Creation complete after'", len(keys))
		incomplete.Details = keys
		incomplete.Suggests = []string{"Destroys, modifications and failed creates report elapsed 0s"}
	} else {
		incomplete.Message = "Every resource reported completion"
	}
	results = append(results, incomplete)

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== tfanalyze Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case StatusOK:
			icon = "PASS"
			okCount++
		case StatusWarning:
			icon = "WARN"
			warnCount++
		case StatusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != StatusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nOutput is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nOutput looks good!")
	}
}

func effectiveLayouts(cfg *config.Config) []string {
	if len(cfg.TimestampLayouts) > 0 {
		return cfg.TimestampLayouts
	}
	return parser.DefaultLayouts
}

func sortedOutcomes(counts map[state.Outcome]int) []state.Outcome {
	outcomes := make([]state.Outcome, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
	return outcomes
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
