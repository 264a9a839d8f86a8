// Package timer holds the single active tracking session as an explicit
// Idle/Running state machine.
package timer

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/notetime/internal/duration"
)

var (
	// ErrAlreadyRunning is returned by Start when a session is in progress.
	ErrAlreadyRunning = errors.New("timer already running")
	// ErrNotRunning is returned by Stop when no session is in progress.
	ErrNotRunning = errors.New("timer not running")
)

// DefaultMarker prefixes the live display and every log entry.
const DefaultMarker = "⏱"

// Session is one start-to-stop interval. Both ends are whole seconds.
type Session struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Seconds is the length of the session in whole seconds.
func (s Session) Seconds() int64 {
	return int64(s.End.Sub(s.Start) / time.Second)
}

// State is Idle or Running.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Stopped is what Stop hands back to the caller for reporting and persisting.
type Stopped struct {
	Label   string
	Session Session
	Elapsed time.Duration
}

// Timer tracks at most one running session. The zero value is an idle timer
// reading the wall clock.
type Timer struct {
	state State
	start time.Time
	label string

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Marker prefixes Display. Defaults to DefaultMarker.
	Marker string
}

// New returns an idle timer using clock, or time.Now when clock is nil.
func New(clock func() time.Time) *Timer {
	return &Timer{Clock: clock}
}

func (t *Timer) now() time.Time {
	if t.Clock != nil {
		return t.Clock().Truncate(time.Second)
	}
	return time.Now().Truncate(time.Second)
}

// State reports the current state.
func (t *Timer) State() State { return t.state }

// Label is the label captured at start, or "" when idle.
func (t *Timer) Label() string { return t.label }

// StartTime is the start of the running session, or the zero time when idle.
func (t *Timer) StartTime() time.Time { return t.start }

// Start begins a session labelled with label. The label is held until Stop so
// the session is logged against the note it was started on.
func (t *Timer) Start(label string) error {
	if t.state == Running {
		return ErrAlreadyRunning
	}
	t.state = Running
	t.start = t.now()
	t.label = label
	return nil
}

// Restore puts the timer back into Running from persisted state.
func (t *Timer) Restore(start time.Time, label string) error {
	if t.state == Running {
		return ErrAlreadyRunning
	}
	t.state = Running
	t.start = start.Truncate(time.Second)
	t.label = label
	return nil
}

// Stop ends the running session and returns it.
func (t *Timer) Stop() (Stopped, error) {
	if t.state != Running {
		return Stopped{}, ErrNotRunning
	}
	end := t.now()
	if end.Before(t.start) {
		end = t.start
	}
	out := Stopped{
		Label:   t.label,
		Session: Session{Start: t.start, End: end},
		Elapsed: end.Sub(t.start),
	}
	t.state = Idle
	t.start = time.Time{}
	t.label = ""
	return out, nil
}

// Toggle starts a session on label when idle and stops the running one
// otherwise. When stopping, label is ignored.
func (t *Timer) Toggle(label string) (*Stopped, error) {
	if t.state == Idle {
		return nil, t.Start(label)
	}
	s, err := t.Stop()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Elapsed returns the time since start at now, or 0 when idle.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	if t.state != Running {
		return 0
	}
	d := now.Truncate(time.Second).Sub(t.start)
	if d < 0 {
		return 0
	}
	return d
}

// Display renders the indicator text for now. Empty when idle.
func (t *Timer) Display(now time.Time) string {
	if t.state != Running {
		return ""
	}
	marker := t.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	name := strings.TrimSuffix(filepath.Base(t.label), filepath.Ext(t.label))
	return marker + " " + name + " " + duration.FormatDuration(t.Elapsed(now))
}
