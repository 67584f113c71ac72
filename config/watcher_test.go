package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bollywood.yaml")
	if err := os.WriteFile(path, []byte("dispatcher:\n  workers: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := NewWatcher(path, NewLoader())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.Current().Dispatcher.Workers != 1 {
		t.Fatalf("initial Workers = %d, want 1", w.Current().Dispatcher.Workers)
	}

	changed := make(chan *Config, 1)
	w.OnChange(func(old, next *Config) { changed <- next })

	if err := os.WriteFile(path, []byte("dispatcher:\n  workers: 9\n"), 0o644); err != nil {
		t.Fatalf("WriteFile (update): %v", err)
	}

	select {
	case next := <-changed:
		if next.Dispatcher.Workers != 9 {
			t.Fatalf("reloaded Workers = %d, want 9", next.Dispatcher.Workers)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never observed the file change")
	}

	if w.Current().Dispatcher.Workers != 9 {
		t.Fatalf("Current().Dispatcher.Workers = %d, want 9 after reload", w.Current().Dispatcher.Workers)
	}
}

func TestWatcherIgnoresMalformedReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bollywood.yaml")
	if err := os.WriteFile(path, []byte("dispatcher:\n  workers: 2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := NewWatcher(path, NewLoader())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("dispatcher:\n  workers: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile (invalid): %v", err)
	}

	// Give the watcher goroutine time to observe and reject the write.
	time.Sleep(200 * time.Millisecond)

	if w.Current().Dispatcher.Workers != 2 {
		t.Fatalf("Current().Dispatcher.Workers = %d, want unchanged 2 after a rejected reload", w.Current().Dispatcher.Workers)
	}
}
