package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <note>",
	Short: "Stop the running timer, or start one on the note",
	Long: `Stop the running timer if there is one, logging into the note it was
started on. Otherwise start timing <note>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}

		started, res, err := tr.Toggle(args[0])
		if err != nil {
			return stopError(cmd, err)
		}
		if started != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Timer started on %s at %s.\n",
				filepath.Base(started.Label), started.StartTime.Format("15:04:05"))
			return nil
		}
		printResult(cmd, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
