package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// ErrUnknownWatch is returned by unwatch for ids that are not active.
var ErrUnknownWatch = errors.New("unknown watch id")

// ErrClosed is returned by watch once the plugin has been closed.
var ErrClosed = errors.New("fs plugin closed")

// WatchArgs is the argument of watch.
type WatchArgs struct {
	Paths     []string `json:"paths"`
	Recursive bool     `json:"recursive,omitempty"`
}

// UnwatchArgs is the argument of unwatch.
type UnwatchArgs struct {
	ID string `json:"id"`
}

// Change is the payload of ChangeEvent.
type Change struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Op   string `json:"op"`
}

type watcher struct {
	id        string
	recursive bool
	fsw       *fsnotify.Watcher
}

func (w *watcher) close() error {
	return w.fsw.Close()
}

func (p *Plugin) watch(_ context.Context, a WatchArgs) (string, error) {
	if len(a.Paths) == 0 {
		return "", errors.New("watch needs at least one path")
	}
	paths := make([]string, 0, len(a.Paths))
	for _, path := range a.Paths {
		abs, err := p.scope.Resolve(path)
		if err != nil {
			return "", err
		}
		paths = append(paths, abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &watcher{id: uuid.NewString(), recursive: a.Recursive, fsw: fsw}

	for _, abs := range paths {
		if err := p.add(w, abs); err != nil {
			fsw.Close()
			return "", err
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		fsw.Close()
		return "", ErrClosed
	}
	p.watchers[w.id] = w
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(w)

	p.logger.Debugw("Watch started", "id", w.id, "paths", paths)
	return w.id, nil
}

// add watches abs and, for recursive watches, every directory below it
// that is inside the scope.
func (p *Plugin) add(w *watcher, abs string) error {
	if !w.recursive {
		if err := w.fsw.Add(abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		return nil
	}
	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != abs && (!d.IsDir() || !p.scope.Allowed(path)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (p *Plugin) loop(w *watcher) {
	defer p.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !p.scope.Allowed(event.Name) {
				continue
			}
			if w.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := p.add(w, event.Name); err != nil {
						p.logger.Warnw("Failed to watch new directory", "id", w.id, "error", err)
					}
				}
			}
			p.host.Emit(ChangeEvent, Change{ID: w.id, Path: event.Name, Op: opName(event.Op)})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			p.logger.Warnw("File watcher error", "id", w.id, "error", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "unknown"
	}
}

func (p *Plugin) unwatch(_ context.Context, a UnwatchArgs) (any, error) {
	p.mu.Lock()
	w, ok := p.watchers[a.ID]
	delete(p.watchers, a.ID)
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWatch, a.ID)
	}
	if err := w.close(); err != nil {
		return nil, fmt.Errorf("failed to stop watcher: %w", err)
	}
	return nil, nil
}
