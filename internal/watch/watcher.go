// Package watch re-runs a script when its source changes, for a tight
// edit-run loop during development.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// scriptExt is the source file extension considered relevant in the
// watched directory.
const scriptExt = ".sor"

// Watcher monitors a script file and triggers re-runs on change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	script   string
	debounce time.Duration
	onChange func()
	stderr   io.Writer

	// Time of the most recent relevant event; the debouncing itself is
	// done by the timer in Start
	mu         sync.Mutex
	lastChange time.Time
}

// NewWatcher creates a file watcher for the given script. onChange is
// called after each debounced change burst.
func NewWatcher(script string, debounce time.Duration, stderr io.Writer, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(script)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		script:   abs,
		debounce: debounce,
		onChange: onChange,
		stderr:   stderr,
	}, nil
}

// Start begins watching until the context is cancelled. The script's
// directory is watched rather than the file itself: editors that save by
// rename-and-replace would otherwise silently detach the watch.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.script)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.isRelevant(event) {
				continue
			}
			w.mu.Lock()
			w.lastChange = time.Now()
			w.mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.stderr, "watch error: %v\n", err)
		}
	}
}

// isRelevant reports whether the event concerns the watched script or a
// sibling source file.
func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if path == w.script {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), scriptExt)
}
