package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/report"
)

var logFormat string

var logCmd = &cobra.Command{
	Use:   "log <note>",
	Short: "Show the sessions logged in a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := report.ForFormat(logFormat)
		if err != nil {
			return err
		}
		tr, err := newTracker()
		if err != nil {
			return err
		}

		r, err := tr.Report(args[0])
		if err != nil {
			return err
		}
		data, err := renderer.Render(r)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}

		// JSON and Markdown carry warnings in the output itself.
		if _, ok := renderer.(*report.TableRenderer); ok {
			for _, w := range r.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
		}
		if r.Drifted() {
			fmt.Fprintf(cmd.ErrOrStderr(), "stored total %s differs from the log (%s); run 'notetime recalc %s'\n",
				r.StoredTotal, r.TotalLabel, args[0])
		}
		return nil
	},
}

func init() {
	logCmd.Flags().StringVarP(&logFormat, "format", "f", "table", "Output format: table, json or markdown")
	rootCmd.AddCommand(logCmd)
}
