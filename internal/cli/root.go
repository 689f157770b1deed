// Package cli provides the command-line interface for tfanalyze.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/internal/cli/commands"
	"github.com/ccollicutt/tfanalyze/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stderr)
}

func run(args []string, stderr io.Writer) int {
	commands.ExitCode = 0
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	potentialCommand := ""
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		potentialCommand = args[0]
	}

	// Unknown first words are tried as tfanalyze-<command> plugins.
	if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
		if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// SilenceErrors keeps cobra from printing this itself.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tfanalyze",
		Short: "Report how long terraform took to create each resource",
		Long: `tfanalyze reads the console output of a terraform apply and rebuilds, for
every resource, when it started, when it completed, how long it took, and
which log lines belong to it (including local-exec provisioner output).

Pipe terraform into it, or pass captured output files:
  terraform apply -auto-approve | tfanalyze analyze
  tfanalyze analyze apply.log

PLUGINS:
  Standalone binaries named tfanalyze-<command> are discovered and invoked
  for unknown commands.

  Plugin locations (searched in order):
    1. Same directory as the tfanalyze binary
    2. ~/.tfanalyze/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(commands.LogLevelFlag, "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String(commands.LogFormatFlag, "text", "Log format (text|json)")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewTimelineCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
