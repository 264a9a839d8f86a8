package cmd

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/notetime/internal/session"
)

// Feature: notetime, Property: status reports the persisted timer
func TestStatusReportsTimer(t *testing.T) {
	setupEnv(t)

	store, err := session.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	rapid.Check(t, func(rt *rapid.T) {
		label := "/notes/" + rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "name") + ".md"
		ago := time.Duration(rapid.Int64Range(0, 48*3600).Draw(rt, "ago")) * time.Second
		start := time.Now().Add(-ago).Truncate(time.Second)

		if err := store.Create(&session.Active{ID: "test-id", Label: label, StartTime: start}); err != nil {
			rt.Fatalf("Create: %v", err)
		}
		defer store.Take()

		out, err := executeCommand(rootCmd, "status")
		if err != nil {
			rt.Fatalf("status command error: %v", err)
		}

		for _, want := range []string{"Note: " + label, "Started: " + start.Format(time.RFC3339), "Elapsed: "} {
			if !strings.Contains(out, want) {
				rt.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})
}

func TestStatusIdle(t *testing.T) {
	setupEnv(t)

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "no timer running") {
		t.Errorf("output = %q", out)
	}
}
