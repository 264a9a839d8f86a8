package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fakeyudi/notetime/internal/report"
)

const loggedNote = "---\ntime_spent: 2h\ntime_log: |\n" +
	"  ⏱ 2024-01-15 11:00:00 -> 2024-01-15 11:30:00 (30m)\n" +
	"  ⏱ 2024-01-15 09:00:00 -> 2024-01-15 10:00:00 (1h)\n" +
	"---\nbody\n"

func TestLogJSON(t *testing.T) {
	dir := setupEnv(t)
	path := writeNote(t, dir, "plan.md", loggedNote)

	out, err := executeCommand(rootCmd, "log", path, "--format", "json")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	// The drift hint follows the JSON document.
	body := out[:strings.LastIndex(out, "}")+1]
	var r report.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if len(r.Entries) != 2 || r.TotalLabel != "1h30m" || r.StoredTotal != "2h" {
		t.Errorf("report = %+v", r)
	}
	if !strings.Contains(out, "run 'notetime recalc") {
		t.Errorf("missing drift hint:\n%s", out)
	}
}

func TestLogTableAndMarkdown(t *testing.T) {
	dir := setupEnv(t)
	path := writeNote(t, dir, "plan.md", loggedNote)

	out, err := executeCommand(rootCmd, "log", path)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, "2024-01-15 09:00:00") {
		t.Errorf("table output:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "log", path, "-f", "markdown")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, "# Time log: plan") || !strings.Contains(out, "- Total: 1h30m") {
		t.Errorf("markdown output:\n%s", out)
	}

	if _, err := executeCommand(rootCmd, "log", path, "-f", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLogDoesNotWrite(t *testing.T) {
	dir := setupEnv(t)
	path := writeNote(t, dir, "plan.md", loggedNote)

	if _, err := executeCommand(rootCmd, "log", path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != loggedNote {
		t.Errorf("log modified the note:\n%s", data)
	}
}
