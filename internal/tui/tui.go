// Package tui provides the live Bubble Tea indicator for a running timer.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/notetime/internal/duration"
	"github.com/fakeyudi/notetime/internal/note"
	"github.com/fakeyudi/notetime/internal/timer"
	"github.com/fakeyudi/notetime/internal/tracker"
)

// ── Styles ────────────

var palette = catppuccin.Mocha

var (
	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(palette.Peach().Hex))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette.Lavender().Hex))

	elapsedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(palette.Green().Hex))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette.Teal().Hex))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(palette.Yellow().Hex))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(palette.Red().Hex))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette.Overlay1().Hex))
)

// ── Keys ────────────

type keyMap struct {
	Stop key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Stop, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Stop: key.NewBinding(
		key.WithKeys("s", " "),
		key.WithHelp("s/space", "stop and log"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit (timer keeps running)"),
	),
}

// ── Messages ────────────

type (
	tickMsg     time.Time
	noteMsg     note.Event
	watchErrMsg struct{ error }
	stoppedMsg  struct {
		res *tracker.Result
		err error
	}
)

// ── Model ────────────

// Stopper ends the running timer. *tracker.Tracker satisfies it.
type Stopper interface {
	Stop() (*tracker.Result, error)
}

// Options configures a Model.
type Options struct {
	Status  tracker.Status
	Marker  string
	Stopper Stopper
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Events and Errors come from note.Watch on the running note. Both may be
	// nil.
	Events <-chan note.Event
	Errors <-chan error
}

// Model is the root Bubble Tea model for the indicator.
type Model struct {
	timer   *timer.Timer
	stopper Stopper
	clock   func() time.Time
	now     time.Time
	events  <-chan note.Event
	errs    <-chan error
	help    help.Model

	missing  bool
	watchErr error
	stopping bool
	done     bool
	result   *tracker.Result
	err      error
}

// New creates a model for the running timer described by opts.Status.
func New(opts Options) Model {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	tm := timer.New(clock)
	tm.Marker = opts.Marker
	if opts.Status.Running {
		_ = tm.Restore(opts.Status.Start, opts.Status.Label)
	}
	return Model{
		timer:   tm,
		stopper: opts.Stopper,
		clock:   clock,
		now:     clock(),
		events:  opts.Events,
		errs:    opts.Errors,
		help:    help.New(),
		done:    !opts.Status.Running,
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	if m.done {
		return nil
	}
	return tea.Batch(tickCmd(), m.waitForNote())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Stop):
			if m.done || m.stopping || m.stopper == nil {
				return m, nil
			}
			m.stopping = true
			return m, m.stopCmd()
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.now = m.clock()
		return m, tickCmd()

	case noteMsg:
		m.missing = msg.Kind == note.Missing
		return m, m.waitForNote()

	case watchErrMsg:
		m.watchErr = msg.error
		return m, nil

	case stoppedMsg:
		m.stopping = false
		m.done = true
		m.result = msg.res
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("✗ " + m.err.Error()))
		var nf *tracker.NotLoggedError
		if errors.As(m.err, &nf) {
			sb.WriteString("\n" + dimStyle.Render("recover with: "+RecoverCommand(nf)))
		}
	case m.result != nil:
		sb.WriteString(doneStyle.Render(fmt.Sprintf("✓ logged %s to %s (total %s)",
			duration.Format(m.result.Session.Seconds()),
			title(m.result.Path),
			m.result.TotalLabel(),
		)))
	case m.done:
		sb.WriteString(dimStyle.Render("no timer running"))
	default:
		sb.WriteString(m.indicator())
		if m.stopping {
			sb.WriteString(dimStyle.Render("  stopping…"))
		}
	}

	if m.missing && m.result == nil && m.err == nil {
		sb.WriteString("\n" + warnStyle.Render("⚠ note missing: "+m.timer.Label()))
	}
	if m.watchErr != nil {
		sb.WriteString("\n" + dimStyle.Render("watch: "+m.watchErr.Error()))
	}

	sb.WriteString("\n")
	if m.done {
		sb.WriteString(m.help.ShortHelpView([]key.Binding{keys.Quit}))
	} else {
		sb.WriteString(m.help.View(keys))
	}
	sb.WriteString("\n")
	return sb.String()
}

// indicator is the styled form of timer.Display.
func (m Model) indicator() string {
	marker := m.timer.Marker
	if marker == "" {
		marker = timer.DefaultMarker
	}
	return markerStyle.Render(marker) + " " +
		noteStyle.Render(title(m.timer.Label())) + " " +
		elapsedStyle.Render(duration.FormatDuration(m.timer.Elapsed(m.now)))
}

// ── Commands ───────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForNote() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events, errs := m.events, m.errs
	return func() tea.Msg {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			return noteMsg(ev)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return watchErrMsg{err}
		}
	}
}

func (m Model) stopCmd() tea.Cmd {
	stopper := m.stopper
	return func() tea.Msg {
		res, err := stopper.Stop()
		return stoppedMsg{res: res, err: err}
	}
}

// Run starts the indicator and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

// ── Helpers ───────────────

// RecoverCommand is the shell command that logs a session lost to a missing
// note once the note is back.
func RecoverCommand(nf *tracker.NotLoggedError) string {
	args := nf.RecoverArgs()
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		quoted[i] = a
	}
	return "notetime " + strings.Join(quoted, " ")
}

func title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
