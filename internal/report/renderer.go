package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04:05"

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// ForFormat returns the renderer registered under name.
func ForFormat(name string) (Renderer, error) {
	switch name {
	case "", "table":
		return &TableRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want table, json or markdown)", name)
	}
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Render(r *Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// MarkdownRenderer renders a Report as a Markdown section.
type MarkdownRenderer struct{}

func (m *MarkdownRenderer) Render(r *Report) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Time log: %s\n\n", title(r.Note))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Total: %s\n", r.TotalLabel)
	fmt.Fprintf(&sb, "- Sessions: %d\n", len(r.Entries))
	if r.Drifted() {
		fmt.Fprintf(&sb, "- Stored total: %s (out of date)\n", r.StoredTotal)
	}
	sb.WriteString("\n")

	sb.WriteString("## Sessions\n\n")
	if len(r.Entries) == 0 {
		sb.WriteString("_No sessions logged._\n")
	} else {
		sb.WriteString("| Start | End | Duration |\n")
		sb.WriteString("|-------|-----|----------|\n")
		for _, e := range r.Entries {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n",
				e.Start.Format(timeLayout),
				e.End.Format(timeLayout),
				e.Duration,
			)
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return []byte(sb.String()), nil
}

// TableRenderer renders a Report as a terminal table with the total in the
// footer. Warnings are not part of the table.
type TableRenderer struct{}

func (t *TableRenderer) Render(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.Header("#", "Start", "End", "Duration")
	for i, e := range r.Entries {
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			e.Start.Format(timeLayout),
			e.End.Format(timeLayout),
			e.Duration,
		); err != nil {
			return nil, err
		}
	}
	table.Footer("", "", "Total", r.TotalLabel)
	if err := table.Render(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
