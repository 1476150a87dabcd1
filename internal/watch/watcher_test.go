package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestIsRelevant(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.sor")
	if err := os.WriteFile(script, []byte("print 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(script, 10*time.Millisecond, os.Stderr, func() {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.watcher.Close()

	tests := []struct {
		name     string
		op       fsnotify.Op
		expected bool
	}{
		{script, fsnotify.Write, true},
		{script, fsnotify.Create, true},
		{script, fsnotify.Chmod, false},
		{filepath.Join(dir, "lib.sor"), fsnotify.Write, true},
		{filepath.Join(dir, "notes.txt"), fsnotify.Write, false},
		{filepath.Join(dir, "main.sor.swp"), fsnotify.Write, false},
	}

	for _, tt := range tests {
		event := fsnotify.Event{Name: tt.name, Op: tt.op}
		if got := w.isRelevant(event); got != tt.expected {
			t.Errorf("isRelevant(%s %v): expected %v, got %v", tt.name, tt.op, tt.expected, got)
		}
	}
}

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.sor")
	if err := os.WriteFile(script, []byte("print 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w, err := NewWatcher(script, 20*time.Millisecond, os.Stderr, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher a moment to install, then touch the script
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(script, []byte("print 2;"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire within 2s")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("watcher did not stop on context cancel")
	}
}

// Rapid write bursts collapse into one re-run per quiet period.
func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.sor")
	if err := os.WriteFile(script, []byte("print 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	var count atomic.Int32
	counted := make(chan struct{}, 16)
	w, err := NewWatcher(script, 100*time.Millisecond, os.Stderr, func() {
		count.Add(1)
		counted <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(script, []byte("print 2;"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-counted:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire")
	}
	// Allow a beat for any spurious extra fire to land
	time.Sleep(300 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced fire, got %d", got)
	}
}
