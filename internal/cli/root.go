package cli

import (
	"github.com/autocaps/renderd/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "renderd",
	Short: "Caption burn-in render worker",
	Long: `Renderd turns timed caption segments into burned-in video renders.

It serializes segments into subtitle files (SRT or styled ASS with
per-word karaoke timing), composites optional overlays, and drives an
ffmpeg encode for each accepted render job.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
