// Package tracker ties the timer, its persisted state and the notes together.
// Every note update reads the current file, merges, and writes it back in one
// step; nothing about a note is kept between calls.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/notetime/internal/config"
	"github.com/fakeyudi/notetime/internal/duration"
	"github.com/fakeyudi/notetime/internal/frontmatter"
	"github.com/fakeyudi/notetime/internal/note"
	"github.com/fakeyudi/notetime/internal/report"
	"github.com/fakeyudi/notetime/internal/session"
	"github.com/fakeyudi/notetime/internal/timer"
	"github.com/fakeyudi/notetime/internal/tracklog"
)

// ErrNoLog is returned by Recalc for a note without a time log.
var ErrNoLog = errors.New("no time log")

// maxAttempts bounds the read-merge-write retries when a note changes
// underneath us.
const maxAttempts = 3

// NotLoggedError is returned by Stop when the stopped session could not be
// written to its note, most often because the note no longer exists. The timer
// is idle either way; Session is what would have been logged.
type NotLoggedError struct {
	Path    string
	Session timer.Session
	Err     error
}

func (e *NotLoggedError) Error() string {
	span := fmt.Sprintf("%s to %s (%s)",
		e.Session.Start.Format(tracklog.TimeLayout),
		e.Session.End.Format(tracklog.TimeLayout),
		duration.Format(e.Session.Seconds()),
	)
	if errors.Is(e.Err, note.ErrNotFound) {
		return fmt.Sprintf("note %s not found; session %s was not logged", e.Path, span)
	}
	return fmt.Sprintf("session %s was not logged to %s: %v", span, e.Path, e.Err)
}

func (e *NotLoggedError) Unwrap() error { return e.Err }

// RecoverArgs are the command-line arguments that log the lost session with
// add once the note can be written.
func (e *NotLoggedError) RecoverArgs() []string {
	return []string{
		"add", e.Path,
		"--start", e.Session.Start.In(time.Local).Format(tracklog.TimeLayout),
		"--end", e.Session.End.In(time.Local).Format(tracklog.TimeLayout),
	}
}

// Result describes a write to a note.
type Result struct {
	Path     string
	Session  timer.Session
	Total    int64
	Warnings []tracklog.Warning
}

// TotalLabel is the formatted total written to the note.
func (r *Result) TotalLabel() string { return duration.Format(r.Total) }

// Status is a snapshot of the timer.
type Status struct {
	Running bool
	ID      string
	Label   string
	Start   time.Time
	Elapsed time.Duration
	Display string
}

// Tracker runs the user-facing actions.
type Tracker struct {
	store  session.Store
	notes  *note.Store
	cfg    config.Config
	clock  func() time.Time
	logger *slog.Logger

	// beforeSave runs between reading and writing a note. Tests use it.
	beforeSave func(path string)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New returns a Tracker over the given stores.
func New(store session.Store, notes *note.Store, cfg config.Config, opts ...Option) *Tracker {
	t := &Tracker{store: store, notes: notes, cfg: cfg, clock: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Format is the log entry format derived from the config.
func (t *Tracker) Format() tracklog.Format {
	return tracklog.Format{Marker: t.cfg.Marker, Order: tracklog.Order(t.cfg.Order)}
}

func (t *Tracker) newTimer() *timer.Timer {
	tm := timer.New(t.clock)
	tm.Marker = t.cfg.Marker
	return tm
}

// restore rebuilds the timer from persisted state.
func (t *Tracker) restore() (*timer.Timer, *session.Active, error) {
	tm := t.newTimer()
	a, err := t.store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoTimer) {
			return tm, nil, nil
		}
		return nil, nil, err
	}
	if err := tm.Restore(a.StartTime, a.Label); err != nil {
		return nil, nil, err
	}
	return tm, a, nil
}

func alreadyRunning(a *session.Active) error {
	return fmt.Errorf("%w on %s since %s", timer.ErrAlreadyRunning, a.Label, a.StartTime.Format(time.RFC3339))
}

// Start begins timing the note at path. The note must exist.
func (t *Tracker) Start(path string) (*session.Active, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	tm, a, err := t.restore()
	if err != nil {
		return nil, err
	}
	if a != nil {
		return nil, alreadyRunning(a)
	}
	if _, err := t.notes.Open(abs); err != nil {
		return nil, err
	}
	if err := tm.Start(abs); err != nil {
		return nil, err
	}

	a = &session.Active{ID: uuid.New().String(), Label: tm.Label(), StartTime: tm.StartTime()}
	if err := t.store.Create(a); err != nil {
		if errors.Is(err, session.ErrTimerExists) {
			// Another invocation started a timer since restore.
			if other, lerr := t.store.Load(); lerr == nil {
				return nil, alreadyRunning(other)
			}
			return nil, timer.ErrAlreadyRunning
		}
		return nil, err
	}
	t.logger.Debug("timer started", "id", a.ID, "note", a.Label, "start", a.StartTime)
	return a, nil
}

// Stop ends the running timer and logs the session into the note it was
// started on. The timer is idle afterwards even if the note cannot be
// written; that failure is a *NotLoggedError.
func (t *Tracker) Stop() (*Result, error) {
	a, err := t.store.Take()
	if err != nil {
		if errors.Is(err, session.ErrNoTimer) {
			return nil, timer.ErrNotRunning
		}
		return nil, err
	}
	tm := t.newTimer()
	if err := tm.Restore(a.StartTime, a.Label); err != nil {
		return nil, err
	}
	stopped, err := tm.Stop()
	if err != nil {
		return nil, err
	}
	t.logger.Debug("timer stopped", "id", a.ID, "note", stopped.Label, "elapsed", stopped.Elapsed)

	res, err := t.apply(stopped.Label, &stopped.Session)
	if err != nil {
		return nil, &NotLoggedError{Path: stopped.Label, Session: stopped.Session, Err: err}
	}
	return res, nil
}

// Toggle stops the running timer, or starts one on path when idle.
func (t *Tracker) Toggle(path string) (*session.Active, *Result, error) {
	_, a, err := t.restore()
	if err != nil {
		return nil, nil, err
	}
	if a != nil {
		res, err := t.Stop()
		return nil, res, err
	}
	started, err := t.Start(path)
	return started, nil, err
}

// Status reports the running timer, if any.
func (t *Tracker) Status() (Status, error) {
	tm, a, err := t.restore()
	if err != nil {
		return Status{}, err
	}
	if a == nil {
		return Status{}, nil
	}
	now := t.clock()
	return Status{
		Running: true,
		ID:      a.ID,
		Label:   a.Label,
		Start:   tm.StartTime(),
		Elapsed: tm.Elapsed(now),
		Display: tm.Display(now),
	}, nil
}

// Add logs a session into the note at path without touching the timer.
func (t *Tracker) Add(path string, s timer.Session) (*Result, error) {
	if s.End.Before(s.Start) {
		return nil, fmt.Errorf("session ends before it starts")
	}
	s = timer.Session{Start: s.Start.Truncate(time.Second), End: s.End.Truncate(time.Second)}
	return t.apply(path, &s)
}

// Recalc re-derives the total from the note's log and rewrites both fields if
// the stored text differs. It reports whether the note was written.
func (t *Tracker) Recalc(path string) (*Result, bool, error) {
	var written, found bool
	res, err := t.update(path, func(fm *frontmatter.Document) (*Result, bool) {
		if found = fm.Has(t.cfg.LogKey); !found {
			return &Result{Path: path}, false
		}
		merged := tracklog.Rebuild(fm.Lines(t.cfg.LogKey), t.Format())
		fm.SetScalar(t.cfg.DurationKey, merged.TotalLabel())
		fm.SetLiteral(t.cfg.LogKey, merged.Lines)
		return &Result{Path: path, Total: merged.Total, Warnings: merged.Warnings}, true
	}, &written)
	if err == nil && !found {
		return nil, false, fmt.Errorf("%s: %w", path, ErrNoLog)
	}
	return res, written, err
}

// Report reads the note's log without writing anything.
func (t *Tracker) Report(path string) (*report.Report, error) {
	doc, err := t.notes.Open(path)
	if err != nil {
		return nil, err
	}
	fm := frontmatter.Parse(doc.Content)
	f := t.Format()
	l := tracklog.Parse(fm.Lines(t.cfg.LogKey), f).Normalize(f)
	stored, _ := fm.Get(t.cfg.DurationKey)

	r := &report.Report{
		Note:        path,
		Total:       l.Total(),
		TotalLabel:  duration.Format(l.Total()),
		StoredTotal: stored,
	}
	for _, e := range l.Entries {
		r.Entries = append(r.Entries, report.Entry{
			Start:    e.Start,
			End:      e.End,
			Seconds:  e.Seconds(),
			Duration: duration.Format(e.Seconds()),
		})
	}
	for _, w := range l.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r, nil
}

// apply merges s into the note at path.
func (t *Tracker) apply(path string, s *timer.Session) (*Result, error) {
	return t.update(path, func(fm *frontmatter.Document) (*Result, bool) {
		merged := tracklog.Merge(fm.Lines(t.cfg.LogKey), *s, t.Format())
		fm.SetScalar(t.cfg.DurationKey, merged.TotalLabel())
		fm.SetLiteral(t.cfg.LogKey, merged.Lines)
		return &Result{Path: path, Session: *s, Total: merged.Total, Warnings: merged.Warnings}, true
	}, nil)
}

// update runs a read-modify-write cycle on the note, retrying when the note
// changed between the read and the write.
func (t *Tracker) update(path string, edit func(*frontmatter.Document) (*Result, bool), written *bool) (*Result, error) {
	for attempt := 1; ; attempt++ {
		doc, err := t.notes.Open(path)
		if err != nil {
			return nil, err
		}
		fm := frontmatter.Parse(doc.Content)
		res, changed := edit(fm)
		out := fm.Render()
		if !changed || out == doc.Content {
			return res, nil
		}
		if fm.Unclosed {
			t.logger.Warn("frontmatter has no closing line, adding a new block", "note", path)
		}

		if t.beforeSave != nil {
			t.beforeSave(path)
		}
		err = t.notes.Save(doc, out)
		if err == nil {
			if written != nil {
				*written = true
			}
			for _, w := range res.Warnings {
				t.logger.Debug("malformed log line", "note", path, "line", w.Line, "reason", w.Reason, "text", w.Text)
			}
			t.logger.Debug("note updated", "note", path, "total", res.TotalLabel())
			return res, nil
		}
		if !errors.Is(err, note.ErrConflict) || attempt == maxAttempts {
			return nil, err
		}
		t.logger.Info("note changed during update, retrying", "note", path, "attempt", attempt)
	}
}
