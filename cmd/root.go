package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/config"
	"github.com/fakeyudi/notetime/internal/duration"
	"github.com/fakeyudi/notetime/internal/note"
	"github.com/fakeyudi/notetime/internal/session"
	"github.com/fakeyudi/notetime/internal/tracker"
	"github.com/fakeyudi/notetime/internal/tracklog"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "notetime",
	Short:        "Track time spent on Markdown notes in their frontmatter",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// newTracker builds a tracker over the on-disk timer state.
func newTracker() (*tracker.Tracker, error) {
	store, err := session.NewStore()
	if err != nil {
		return nil, err
	}
	return tracker.New(store, note.NewStore(), GetConfig(), tracker.WithLogger(slog.Default())), nil
}

// printWarnings writes malformed-line warnings to stderr.
func printWarnings(cmd *cobra.Command, warnings []tracklog.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func printResult(cmd *cobra.Command, res *tracker.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s to %s (total %s).\n",
		duration.Format(res.Session.Seconds()),
		filepath.Base(res.Path),
		res.TotalLabel(),
	)
	printWarnings(cmd, res.Warnings)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
