package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/pkg/logger"
)

// Persistent flag names defined on the root command.
const (
	LogLevelFlag  = "log-level"
	LogFormatFlag = "log-format"
)

// newLogger builds the logger selected by the persistent log flags. Logs go
// to the command's stderr. Commands run without a root fall back to warn
// level text logs.
func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	levelName, err := cmd.Flags().GetString(LogLevelFlag)
	if err != nil {
		levelName = "warn"
	}
	format, err := cmd.Flags().GetString(LogFormatFlag)
	if err != nil {
		format = "text"
	}

	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "text", "":
		return logger.New(cmd.ErrOrStderr(), level, false), nil
	case "json":
		return logger.New(cmd.ErrOrStderr(), level, true), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", format)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
