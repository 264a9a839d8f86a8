// Package session persists the running timer so that start and stop can run
// as separate invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNoTimer is returned by Load and Take when no timer state exists on disk.
	ErrNoTimer = errors.New("no running timer")
	// ErrTimerExists is returned by Create when a timer is already persisted.
	ErrTimerExists = errors.New("timer state already exists")
)

// Store persists the running timer between invocations.
type Store interface {
	// Create persists a, failing with ErrTimerExists if a timer is stored.
	Create(a *Active) error
	Load() (*Active, error) // returns ErrNoTimer if none exists
	// Take removes and returns the stored timer. Of concurrent callers exactly
	// one gets it; the rest see ErrNoTimer.
	Take() (*Active, error)
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to timer.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/notetime/timer.json or ~/.local/share/notetime/timer.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "timer.json")}, nil
}

// dataDir returns the notetime-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "notetime"), nil
}

// Create writes a to a temp file and hard-links it into place, so readers
// never see a partial file and an existing timer is never replaced.
func (d *diskStore) Create(a *Active) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to persist timer state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "timer-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist timer state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist timer state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist timer state: %w", err)
	}

	if err := os.Link(tmpName, d.path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrTimerExists
		}
		return fmt.Errorf("failed to persist timer state: %w", err)
	}
	return nil
}

// Load reads the timer file without removing it.
func (d *diskStore) Load() (*Active, error) {
	return read(d.path)
}

// Take claims the timer file by renaming it, then reads and removes it.
func (d *diskStore) Take() (*Active, error) {
	claimed := fmt.Sprintf("%s.%d.stopping", d.path, os.Getpid())
	if err := os.Rename(d.path, claimed); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoTimer
		}
		return nil, fmt.Errorf("failed to claim timer state: %w", err)
	}
	defer os.Remove(claimed)
	return read(claimed)
}

func read(path string) (*Active, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoTimer
		}
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}

	var a Active
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse timer state: %w", err)
	}
	return &a, nil
}
