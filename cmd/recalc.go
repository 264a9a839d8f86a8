package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/tracker"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc <note>",
	Short: "Recompute a note's total from its log",
	Long: `Recompute the total from the note's log and rewrite both fields in the
canonical form. Useful after editing the log by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := newTracker()
		if err != nil {
			return err
		}

		name := filepath.Base(args[0])
		res, written, err := tr.Recalc(args[0])
		if errors.Is(err, tracker.ErrNoLog) {
			fmt.Fprintf(cmd.OutOrStdout(), "No time log in %s.\n", name)
			return nil
		}
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: total %s.\n", name, res.TotalLabel())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date (total %s).\n", name, res.TotalLabel())
		}
		printWarnings(cmd, res.Warnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recalcCmd)
}
