// Package tracklog parses, merges and renders the session log kept in a
// note's frontmatter. The total is always derived from the log itself.
package tracklog

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fakeyudi/notetime/internal/duration"
	"github.com/fakeyudi/notetime/internal/timer"
)

// TimeLayout is the timestamp layout embedded in every entry.
const TimeLayout = "2006-01-02 15:04:05"

var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)

// Order controls where entries sit relative to each other.
type Order string

const (
	NewestFirst Order = "newest"
	OldestFirst Order = "oldest"
)

// Entry is one logged session.
type Entry struct {
	Start time.Time
	End   time.Time
}

// Seconds is the entry's length in whole seconds.
func (e Entry) Seconds() int64 {
	return int64(e.End.Sub(e.Start) / time.Second)
}

// Warning describes a log line that could not be read as an entry.
type Warning struct {
	Line   int // 1-based position among the log's non-blank lines
	Text   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("log line %d: %s: %q", w.Line, w.Reason, w.Text)
}

// Log is a parsed session log. Malformed lines are kept verbatim so that
// nothing the user wrote is lost on rewrite.
type Log struct {
	Entries   []Entry
	Malformed []string
	Warnings  []Warning

	// joined holds the Malformed indexes that start a rejected line pair.
	joined []int
}

// Format controls entry rendering.
type Format struct {
	Marker string
	Order  Order
	// Location for parsing and rendering timestamps. Defaults to time.Local.
	Location *time.Location
}

func (f Format) marker() string {
	if f.Marker == "" {
		return timer.DefaultMarker
	}
	return f.Marker
}

func (f Format) loc() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// Parse reads log lines. Blank lines are dropped. A line carrying exactly two
// timestamps is one entry. A line with a single timestamp directly followed by
// another single-timestamp line is read as a start/end pair; a blank line in
// between keeps them apart. Everything else is malformed and reported as a
// warning.
//
// Parsing the rendered form of a Log yields the same Log.
func Parse(lines []string, f Format) Log {
	type line struct {
		idx    int // among non-blank lines
		pos    int // among all lines
		text   string
		stamps []string
	}
	var all []line
	for pos, raw := range lines {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		all = append(all, line{idx: len(all), pos: pos, text: text, stamps: timestampRe.FindAllString(text, -1)})
	}

	var out Log
	malformed := func(l line, reason string) {
		out.Malformed = append(out.Malformed, l.text)
		out.Warnings = append(out.Warnings, Warning{Line: l.idx + 1, Text: l.text, Reason: reason})
	}

	for i := 0; i < len(all); i++ {
		l := all[i]
		switch {
		case len(l.stamps) > 2:
			malformed(l, "more than two timestamps")
		case len(l.stamps) == 2:
			e, reason := makeEntry(l.stamps[0], l.stamps[1], f.loc())
			if reason != "" {
				malformed(l, reason)
				continue
			}
			out.Entries = append(out.Entries, e)
		case len(l.stamps) == 1 && i+1 < len(all) && all[i+1].pos == l.pos+1 && len(all[i+1].stamps) == 1:
			next := all[i+1]
			i++
			e, reason := makeEntry(l.stamps[0], next.stamps[0], f.loc())
			if reason != "" {
				// Both halves stay together so a re-parse pairs them again.
				out.joined = append(out.joined, len(out.Malformed))
				malformed(l, reason)
				malformed(next, reason)
				continue
			}
			out.Entries = append(out.Entries, e)
		case len(l.stamps) == 1:
			malformed(l, "missing end timestamp")
		default:
			malformed(l, "no timestamps")
		}
	}
	return out
}

func makeEntry(start, end string, loc *time.Location) (Entry, string) {
	s, err := time.ParseInLocation(TimeLayout, start, loc)
	if err != nil {
		return Entry{}, "invalid start timestamp"
	}
	e, err := time.ParseInLocation(TimeLayout, end, loc)
	if err != nil {
		return Entry{}, "invalid end timestamp"
	}
	if e.Before(s) {
		return Entry{}, "end before start"
	}
	return Entry{Start: s, End: e}, ""
}

// Total sums the entries in whole seconds. Malformed lines count as zero;
// see Warnings.
func (l Log) Total() int64 {
	var sum int64
	for _, e := range l.Entries {
		sum += e.Seconds()
	}
	return sum
}

// Add inserts s, drops duplicate start/end pairs and orders the entries.
func (l Log) Add(s timer.Session, f Format) Log {
	entries := make([]Entry, 0, len(l.Entries)+1)
	entries = append(entries, Entry{Start: s.Start, End: s.End})
	entries = append(entries, l.Entries...)
	l.Entries = entries
	return l.Normalize(f)
}

// Normalize deduplicates and orders entries without adding any.
func (l Log) Normalize(f Format) Log {
	seen := make(map[[2]int64]bool, len(l.Entries))
	uniq := make([]Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		k := [2]int64{e.Start.Unix(), e.End.Unix()}
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, e)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		a, b := uniq[i], uniq[j]
		if !a.Start.Equal(b.Start) {
			if f.Order == OldestFirst {
				return a.Start.Before(b.Start)
			}
			return a.Start.After(b.Start)
		}
		if f.Order == OldestFirst {
			return a.End.Before(b.End)
		}
		return a.End.After(b.End)
	})
	l.Entries = uniq
	return l
}

// RenderEntry formats one entry with the fixed template.
func RenderEntry(e Entry, f Format) string {
	loc := f.loc()
	return fmt.Sprintf("%s %s -> %s (%s)",
		f.marker(),
		e.Start.In(loc).Format(TimeLayout),
		e.End.In(loc).Format(TimeLayout),
		duration.Format(e.Seconds()),
	)
}

// Render returns one line per entry followed by the malformed lines. Two
// single-timestamp malformed lines that were not read as a pair are kept apart
// by a blank line so they are not paired on the next parse.
func (l Log) Render(f Format) []string {
	lines := make([]string, 0, len(l.Entries)+len(l.Malformed))
	for _, e := range l.Entries {
		lines = append(lines, RenderEntry(e, f))
	}
	for i, m := range l.Malformed {
		if i > 0 && singleStamp(l.Malformed[i-1]) && singleStamp(m) && !slices.Contains(l.joined, i-1) {
			lines = append(lines, "")
		}
		lines = append(lines, m)
	}
	return lines
}

func singleStamp(s string) bool {
	return len(timestampRe.FindAllString(s, 2)) == 1
}

// Result is the outcome of a merge.
type Result struct {
	Lines    []string
	Total    int64
	Warnings []Warning
}

// TotalLabel is the formatted total.
func (r Result) TotalLabel() string { return duration.Format(r.Total) }

// Merge parses existing, adds s and re-renders. existing may be empty.
func Merge(existing []string, s timer.Session, f Format) Result {
	l := Parse(existing, f).Add(s, f)
	return Result{Lines: l.Render(f), Total: l.Total(), Warnings: l.Warnings}
}

// Rebuild parses and re-renders existing without adding a session.
func Rebuild(existing []string, f Format) Result {
	l := Parse(existing, f).Normalize(f)
	return Result{Lines: l.Render(f), Total: l.Total(), Warnings: l.Warnings}
}
