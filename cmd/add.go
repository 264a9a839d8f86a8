package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/notetime/internal/timer"
	"github.com/fakeyudi/notetime/internal/tracklog"
)

var addStart, addEnd string

var addCmd = &cobra.Command{
	Use:   "add <note>",
	Short: "Log a session into a note by hand",
	Long: `Log a session into a note without running the timer. Times use the
log format, "YYYY-MM-DD HH:MM:SS", in local time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.ParseInLocation(tracklog.TimeLayout, addStart, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := time.ParseInLocation(tracklog.TimeLayout, addEnd, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		tr, err := newTracker()
		if err != nil {
			return err
		}
		res, err := tr.Add(args[0], timer.Session{Start: start, End: end})
		if err != nil {
			return err
		}
		printResult(cmd, res)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addStart, "start", "", "session start, \"YYYY-MM-DD HH:MM:SS\"")
	addCmd.Flags().StringVar(&addEnd, "end", "", "session end, \"YYYY-MM-DD HH:MM:SS\"")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(addCmd)
}
