package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/note"
	"github.com/fakeyudi/notetime/internal/tracker"
	"github.com/fakeyudi/notetime/internal/tui"
)

var (
	plainOutput bool
	watchTicks  int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live indicator for the running timer",
	Long: `Show a live indicator for the running timer, updated every second.
Press s or space to stop and log the session, q to leave it running.

When stdout is not a terminal, or with --plain, one line is printed per second
until the timer stops or --ticks lines have been printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}
		st, err := tr.Status()
		if err != nil {
			return err
		}
		if !st.Running {
			fmt.Fprintln(cmd.OutOrStdout(), "no timer running")
			return nil
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			return watchPlain(ctx, cmd, tr, watchTicks)
		}

		opts := tui.Options{Status: st, Marker: GetConfig().Marker, Stopper: tr}
		events, errs, err := note.Watch(ctx, st.Label)
		if err != nil {
			// The indicator still works without change notifications.
			slog.Warn("cannot watch note", "note", st.Label, "err", err)
		} else {
			opts.Events, opts.Errors = events, errs
		}
		return tui.Run(tui.New(opts))
	},
}

// watchPlain prints the indicator once per second. ticks <= 0 means until the
// timer stops or ctx is done.
func watchPlain(ctx context.Context, cmd *cobra.Command, tr *tracker.Tracker, ticks int) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for n := 0; ticks <= 0 || n < ticks; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		st, err := tr.Status()
		if err != nil {
			return err
		}
		if !st.Running {
			fmt.Fprintln(cmd.OutOrStdout(), "timer stopped")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), st.Display)
	}
	return nil
}

func init() {
	watchCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	watchCmd.Flags().IntVar(&watchTicks, "ticks", 0, "stop after this many lines in plain mode (0 = until the timer stops)")
	rootCmd.AddCommand(watchCmd)
}
