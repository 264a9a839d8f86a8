// Package note reads and writes the Markdown files that sessions are logged
// into. Every write is conditional on the file being unchanged since it was
// read.
package note

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned when the note does not exist (renamed, moved or
	// deleted).
	ErrNotFound = errors.New("note not found")
	// ErrConflict is returned by Save when the note changed after Open.
	ErrConflict = errors.New("note changed on disk since it was read")
)

// Document is one read of a note.
type Document struct {
	Path    string
	Content string
	// Version identifies the bytes that were read.
	Version string

	mode os.FileMode
}

func version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store reads and writes notes on the local filesystem.
type Store struct{}

// NewStore returns a filesystem note store.
func NewStore() *Store { return &Store{} }

// Open reads the note at path.
func (s *Store) Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat note: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	return &Document{Path: path, Content: string(data), Version: version(data), mode: info.Mode().Perm()}, nil
}

// Save replaces the note's content with content, atomically via a temp file
// and os.Rename. It fails with ErrNotFound if the note is gone and with
// ErrConflict if it was modified since doc was opened.
func (s *Store) Save(doc *Document, content string) (err error) {
	current, err := os.ReadFile(doc.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", doc.Path, ErrNotFound)
		}
		return fmt.Errorf("failed to read note: %w", err)
	}
	if version(current) != doc.Version {
		return fmt.Errorf("%s: %w", doc.Path, ErrConflict)
	}

	tmp, err := os.CreateTemp(filepath.Dir(doc.Path), "."+filepath.Base(doc.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	mode := doc.mode
	if mode == 0 {
		mode = 0o644
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err = os.Rename(tmpName, doc.Path); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}

	doc.Content = content
	doc.Version = version([]byte(content))
	return nil
}
