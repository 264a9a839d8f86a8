package duration_test

import (
	"regexp"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/notetime/internal/duration"
)

func TestFormatBoundaries(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{1, "1s"},
		{59, "59s"},
		{60, "1m"},
		{61, "1m1s"},
		{119, "1m59s"},
		{3599, "59m59s"},
		{3600, "1h"},
		{3601, "1h"},
		{3660, "1h1m"},
		{3661, "1h1m"},
		{7200, "2h"},
		{90061, "25h1m"},
		{-5, "0s"},
	}
	for _, c := range cases {
		if got := duration.Format(c.seconds); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatDurationTruncates(t *testing.T) {
	if got := duration.FormatDuration(90*time.Second + 900*time.Millisecond); got != "1m30s" {
		t.Errorf("FormatDuration = %q, want %q", got, "1m30s")
	}
}

var labelPattern = regexp.MustCompile(`^(\d+h(\d+m)?|\d+m(\d+s)?|\d+s)$`)

// Every non-negative input yields exactly one of the allowed label shapes.
func TestFormatShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int64Range(0, 1_000_000).Draw(t, "seconds")
		got := duration.Format(n)
		if !labelPattern.MatchString(got) {
			t.Fatalf("Format(%d) = %q does not match label shape", n, got)
		}
		if n >= 3600 && regexp.MustCompile(`\d+s$`).MatchString(got) {
			t.Fatalf("Format(%d) = %q shows seconds above one hour", n, got)
		}
	})
}
