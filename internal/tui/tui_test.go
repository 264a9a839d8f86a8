package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/notetime/internal/note"
	"github.com/fakeyudi/notetime/internal/timer"
	"github.com/fakeyudi/notetime/internal/tracker"
)

type fakeStopper struct {
	calls int
	res   *tracker.Result
	err   error
}

func (f *fakeStopper) Stop() (*tracker.Result, error) {
	f.calls++
	return f.res, f.err
}

var start = time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local)

func runningModel(stopper Stopper, now *time.Time) Model {
	return New(Options{
		Status:  tracker.Status{Running: true, Label: "/notes/plan.md", Start: start},
		Stopper: stopper,
		Clock:   func() time.Time { return *now },
	})
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTickAdvancesElapsed(t *testing.T) {
	now := start.Add(59 * time.Second)
	m := runningModel(nil, &now)
	if !strings.Contains(m.View(), "59s") {
		t.Fatalf("initial view missing elapsed:\n%s", m.View())
	}

	now = start.Add(61 * time.Second)
	updated, cmd := m.Update(tickMsg(now))
	m = updated.(Model)
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
	view := m.View()
	if !strings.Contains(view, "plan") || !strings.Contains(view, "1m1s") {
		t.Errorf("view after tick:\n%s", view)
	}
}

func TestStopKeyStopsAndTicksCease(t *testing.T) {
	now := start.Add(25 * time.Minute)
	stopper := &fakeStopper{res: &tracker.Result{
		Path:    "/notes/plan.md",
		Session: timer.Session{Start: start, End: now},
		Total:   1500,
	}}
	m := runningModel(stopper, &now)

	updated, cmd := m.Update(keyPress('s'))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a stop command")
	}
	// A second press while stopping is ignored.
	if _, again := m.Update(keyPress(' ')); again != nil {
		t.Error("stop issued twice")
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if stopper.calls != 1 {
		t.Errorf("Stop called %d times", stopper.calls)
	}
	if !strings.Contains(m.View(), "logged 25m to plan (total 25m)") {
		t.Errorf("view after stop:\n%s", m.View())
	}
	if _, cmd := m.Update(tickMsg(now)); cmd != nil {
		t.Error("ticks should cease once the timer is idle")
	}
	if _, cmd := m.Update(keyPress('s')); cmd != nil {
		t.Error("stop on an idle indicator should do nothing")
	}
}

func TestStopNoteMissingShowsRecovery(t *testing.T) {
	now := start.Add(time.Minute)
	stopper := &fakeStopper{err: &tracker.NotLoggedError{
		Path:    "/notes/plan.md",
		Session: timer.Session{Start: start, End: now},
		Err:     note.ErrNotFound,
	}}
	m := runningModel(stopper, &now)

	_, cmd := m.Update(keyPress('s'))
	updated, _ := m.Update(cmd())
	view := updated.(Model).View()
	if !strings.Contains(view, "not found") || !strings.Contains(view, "notetime add /notes/plan.md") {
		t.Errorf("view:\n%s", view)
	}
}

func TestQuitLeavesTimerRunning(t *testing.T) {
	now := start
	stopper := &fakeStopper{}
	m := runningModel(stopper, &now)

	_, cmd := m.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if stopper.calls != 0 {
		t.Error("quit must not stop the timer")
	}
}

func TestNoteMissingWarning(t *testing.T) {
	now := start
	events := make(chan note.Event, 1)
	m := New(Options{
		Status: tracker.Status{Running: true, Label: "/notes/plan.md", Start: start},
		Clock:  func() time.Time { return now },
		Events: events,
	})

	updated, cmd := m.Update(noteMsg{Path: "/notes/plan.md", Kind: note.Missing})
	m = updated.(Model)
	if cmd == nil {
		t.Error("expected to keep listening for note events")
	}
	if !strings.Contains(m.View(), "note missing") {
		t.Errorf("view:\n%s", m.View())
	}

	updated, _ = m.Update(noteMsg{Path: "/notes/plan.md", Kind: note.Modified})
	if strings.Contains(updated.(Model).View(), "note missing") {
		t.Error("warning should clear once the note is back")
	}
}

func TestIdleModel(t *testing.T) {
	m := New(Options{})
	if m.Init() != nil {
		t.Error("idle indicator should not tick")
	}
	if !strings.Contains(m.View(), "no timer running") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestRecoverCommand(t *testing.T) {
	nf := &tracker.NotLoggedError{
		Path:    "/notes/my plan.md",
		Session: timer.Session{Start: start, End: start.Add(time.Hour)},
	}
	want := `notetime add "/notes/my plan.md" --start "2024-01-15 09:00:00" --end "2024-01-15 10:00:00"`
	if got := RecoverCommand(nf); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}
