package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/tfanalyze/pkg/config"
	"github.com/ccollicutt/tfanalyze/pkg/timeline"
)

// DefaultViewerAddr is where the timeline viewer listens by default.
const DefaultViewerAddr = "127.0.0.1:8080"

// TimelineOptions holds command-line options for the timeline commands.
type TimelineOptions struct {
	ConfigFile string
	Dir        string
	Addr       string
}

// NewTimelineCommand creates the timeline command group.
func NewTimelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Work with exported timeline data",
		Long: `Work with the timeline data written by 'tfanalyze analyze --with-graph'.

The export is two files, result.json (one item per resource) and
groups.json (one group per resource).`,
	}

	cmd.AddCommand(newTimelineServeCommand())

	return cmd
}

func newTimelineServeCommand() *cobra.Command {
	opts := &TimelineOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline viewer",
		Long: `Serve a browser timeline of resource creation from an export directory.

Endpoints:
  /             viewer page
  /api/items    items with offsets from the first start (mm:ss)
  /api/groups   groups
  /api/bounds   default window (first start - 2m, last end + 2m)
  /healthz      liveness

The export is re-read on every request, so re-running analyze updates the
viewer without a restart.

Example:
  tfanalyze timeline serve --dir ./client/src --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimelineServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (YAML) providing timeline.dir")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Export directory (default timeline.dir)")
	cmd.Flags().StringVar(&opts.Addr, "addr", DefaultViewerAddr, "Listen address")

	return cmd
}

func runTimelineServe(cmd *cobra.Command, opts *TimelineOptions) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := opts.Dir
	if dir == "" {
		cfg, err := config.Load(ctx, opts.ConfigFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dir = cfg.Timeline.Dir
	}

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("timeline directory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving timeline from %s on http://%s\n", dir, opts.Addr)

	return timeline.NewServer(dir, log).Start(ctx, opts.Addr)
}
