package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/duration"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}

		st, err := tr.Status()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Running {
			fmt.Fprintln(out, "no timer running")
			return nil
		}

		fmt.Fprintf(out, "Note: %s\n", st.Label)
		fmt.Fprintf(out, "Started: %s\n", st.Start.Format(time.RFC3339))
		fmt.Fprintf(out, "Elapsed: %s\n", duration.FormatDuration(st.Elapsed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
