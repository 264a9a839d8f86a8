package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start <note>",
	Short: "Start timing a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}

		a, err := tr.Start(args[0])
		if err != nil {
			if errors.Is(err, timer.ErrAlreadyRunning) {
				return fmt.Errorf("%w; stop it first", err)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Timer started on %s at %s.\n",
			filepath.Base(a.Label), a.StartTime.Format("15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
