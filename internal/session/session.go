package session

import "time"

// Active is the persisted form of a running timer. It exists on disk only
// while a timer is running.
type Active struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"` // absolute path of the note the timer was started on
	StartTime time.Time `json:"start_time"`
}
