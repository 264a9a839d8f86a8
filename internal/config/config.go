package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configurable notetime settings.
type Config struct {
	DurationKey string `toml:"duration_key"` // frontmatter key holding the total
	LogKey      string `toml:"log_key"`      // frontmatter key holding the session log
	Marker      string `toml:"marker"`       // glyph leading each log entry
	Order       string `toml:"order"`        // "newest" | "oldest"
	LogLevel    string `toml:"log_level"`    // "debug" | "info" | "warn" | "error"
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DurationKey: "time_spent",
		LogKey:      "time_log",
		Marker:      "⏱",
		Order:       "newest",
		LogLevel:    "warn",
	}
}

// GlobalPath is $XDG_CONFIG_HOME/notetime/config.toml, falling back to
// ~/.config/notetime/config.toml.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "notetime", "config.toml"), nil
}

// ProjectFile is read from the current working directory.
const ProjectFile = ".notetime.toml"

// LoadGlobal reads the global config file.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .notetime.toml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// loadFile reads and parses a TOML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

func (c Config) validate() error {
	switch c.Order {
	case "", "newest", "oldest":
	default:
		return fmt.Errorf("order must be \"newest\" or \"oldest\", got %q", c.Order)
	}
	if c.DurationKey != "" && c.DurationKey == c.LogKey {
		return fmt.Errorf("duration_key and log_key must differ")
	}
	if strings.ContainsAny(c.DurationKey+c.LogKey, ":\n#") {
		return fmt.Errorf("keys must not contain ':', '#' or newlines")
	}
	return nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.DurationKey != "" {
			result.DurationKey = c.DurationKey
		}
		if c.LogKey != "" {
			result.LogKey = c.LogKey
		}
		if c.Marker != "" {
			result.Marker = c.Marker
		}
		if c.Order != "" {
			result.Order = c.Order
		}
		if c.LogLevel != "" {
			result.LogLevel = c.LogLevel
		}
	}
	return result
}

// Level maps LogLevel to a slog level. Unknown values mean warn.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
