// Package duration renders elapsed seconds as the compact labels used in the
// live indicator, in log entries and in the total field.
package duration

import (
	"fmt"
	"time"
)

// Format returns the shortest label for seconds.
//
// Seconds are shown only below one hour: 61 is "1m1s" but 3661 is "1h1m".
// Negative input is treated as zero.
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatDuration formats d truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	return Format(int64(d / time.Second))
}
