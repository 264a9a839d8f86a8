package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

// Feature: notetime, Property: config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-z_]{1,20}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		// Each field is independently either empty or a non-empty value.
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasDurationKey") {
			cfg.DurationKey = nonEmptyString.Draw(t, "durationKey")
		}
		if rapid.Bool().Draw(t, "hasLogKey") {
			cfg.LogKey = nonEmptyString.Draw(t, "logKey")
		}
		if rapid.Bool().Draw(t, "hasMarker") {
			cfg.Marker = nonEmptyString.Draw(t, "marker")
		}
		if rapid.Bool().Draw(t, "hasOrder") {
			cfg.Order = rapid.SampledFrom([]string{"newest", "oldest"}).Draw(t, "order")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "DurationKey", global.DurationKey, project.DurationKey, defaults.DurationKey, merged.DurationKey)
		checkStringField(t, "LogKey", global.LogKey, project.LogKey, defaults.LogKey, merged.LogKey)
		checkStringField(t, "Marker", global.Marker, project.Marker, defaults.Marker, merged.Marker)
		checkStringField(t, "Order", global.Order, project.Order, defaults.Order, merged.Order)
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set: expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set: expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set: expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.DurationKey != "time_spent" || d.LogKey != "time_log" {
		t.Errorf("keys: got %q / %q", d.DurationKey, d.LogKey)
	}
	if d.Order != "newest" {
		t.Errorf("Order: want %q, got %q", "newest", d.Order)
	}
	if d.Level() != slog.LevelWarn {
		t.Errorf("Level: want warn, got %v", d.Level())
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || *cfg != Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadGlobalFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	dir := filepath.Join(tmp, "notetime")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "duration_key = \"spent\"\norder = \"oldest\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged := Merge(cfg, nil)
	if merged.DurationKey != "spent" || merged.Order != "oldest" || merged.LogKey != "time_log" {
		t.Errorf("merged = %+v", merged)
	}
	if merged.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", merged.Level())
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadParseErrors(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":    "duration_key = ",
		"bad order": "order = \"sideways\"\n",
		"same keys": "duration_key = \"x\"\nlog_key = \"x\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			if err := os.WriteFile(ProjectFile, []byte(data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadProject()
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if parseErr.Path != ProjectFile {
				t.Errorf("Path = %q", parseErr.Path)
			}
		})
	}
}
