package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/timer"
	"github.com/fakeyudi/notetime/internal/tracker"
	"github.com/fakeyudi/notetime/internal/tui"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and log the session into its note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}

		res, err := tr.Stop()
		if err != nil {
			return stopError(cmd, err)
		}
		printResult(cmd, res)
		return nil
	},
}

// stopError turns Stop failures into user-facing errors. A session that could
// not be written comes with the command that recovers it.
func stopError(cmd *cobra.Command, err error) error {
	if errors.Is(err, timer.ErrNotRunning) {
		return fmt.Errorf("no timer running")
	}
	var nf *tracker.NotLoggedError
	if errors.As(err, &nf) {
		fmt.Fprintf(cmd.ErrOrStderr(), "recover with: %s\n", tui.RecoverCommand(nf))
	}
	return err
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
