package report

import (
	"time"
)

// Report is the read-only view of a note's time log.
type Report struct {
	Note        string   `json:"note"`
	Total       int64    `json:"total_seconds"`
	TotalLabel  string   `json:"total"`
	StoredTotal string   `json:"stored_total,omitempty"` // value currently in the duration field
	Entries     []Entry  `json:"entries"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Entry is a single logged session.
type Entry struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Seconds  int64     `json:"seconds"`
	Duration string    `json:"duration"`
}

// Drifted reports whether the stored total disagrees with the log.
func (r *Report) Drifted() bool {
	return r.StoredTotal != "" && r.StoredTotal != r.TotalLabel
}
