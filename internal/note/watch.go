package note

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventKind says what happened to a watched note.
type EventKind string

const (
	Modified EventKind = "modified"
	Missing  EventKind = "missing"
)

// Event is emitted by Watch.
type Event struct {
	Path string
	Kind EventKind
}

// Watch reports changes to the note at path until ctx is cancelled. The
// parent directory is watched so renames and atomic replaces are seen.
// Both returned channels are closed when watching stops.
func Watch(ctx context.Context, path string) (<-chan Event, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	events := make(chan Event, 16)
	errs := make(chan error, 4)

	go func() {
		defer watcher.Close()
		defer close(events)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				var out Event
				switch {
				case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
					out = Event{Path: abs, Kind: Missing}
				case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
					out = Event{Path: abs, Kind: Modified}
				default:
					continue
				}
				select {
				case events <- out:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; pass them on without blocking.
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return events, errs, nil
}
