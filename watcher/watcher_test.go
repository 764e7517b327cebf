package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"photofolio/config"
)

type recorder struct {
	ch chan []string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan []string, 10)}
}

func (r *recorder) onChange(paths []string) {
	r.ch <- paths
}

func startWatcher(t *testing.T, onChange func([]string)) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Prepare.SourceDir = dir
	cfg.Watch.Debounce = 150 * time.Millisecond

	w, err := NewWatcher(cfg, onChange)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	return w, dir
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestWatcherCoalescesBurst(t *testing.T) {
	rec := newRecorder()
	w, dir := startWatcher(t, rec.onChange)

	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.HEIC")
	writeFile(t, b)
	writeFile(t, a)

	select {
	case paths := <-rec.ch:
		if !slices.Equal(paths, []string{a, b}) {
			t.Errorf("Expected %v, got %v", []string{a, b}, paths)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for change callback")
	}

	// No second run for the same burst.
	select {
	case paths := <-rec.ch:
		t.Errorf("Unexpected second callback: %v", paths)
	case <-time.After(400 * time.Millisecond):
	}

	select {
	case event := <-w.Events():
		if event.Type != EventCreated && event.Type != EventModified {
			t.Errorf("Expected EventCreated or EventModified, got %v", event.Type)
		}
	default:
		t.Error("Expected events on the channel")
	}
}

func TestWatcherReportsDeletes(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "gone.png")
	writeFile(t, photo)

	rec := newRecorder()
	cfg := config.Default()
	cfg.Prepare.SourceDir = dir
	cfg.Watch.Debounce = 100 * time.Millisecond
	w, err := NewWatcher(cfg, rec.onChange)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := os.Remove(photo); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}

	select {
	case paths := <-rec.ch:
		if !slices.Equal(paths, []string{photo}) {
			t.Errorf("Unexpected paths %v", paths)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for delete callback")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	rec := newRecorder()
	_, dir := startWatcher(t, rec.onChange)

	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, ".hidden.jpg"))

	select {
	case paths := <-rec.ch:
		t.Errorf("Should not run for ignored files, got: %v", paths)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherRunsNeverOverlap(t *testing.T) {
	var running, maxRunning atomic.Int32
	done := make(chan struct{}, 10)

	_, dir := startWatcher(t, func(paths []string) {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(400 * time.Millisecond)
		running.Add(-1)
		done <- struct{}{}
	})

	writeFile(t, filepath.Join(dir, "one.jpg"))
	time.Sleep(250 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "two.jpg"))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("Timeout waiting for run %d", i+1)
		}
	}

	if maxRunning.Load() != 1 {
		t.Errorf("Expected runs to be serialized, saw %d concurrent", maxRunning.Load())
	}
}

func TestStopSuppressesPendingRun(t *testing.T) {
	rec := newRecorder()
	w, dir := startWatcher(t, rec.onChange)

	writeFile(t, filepath.Join(dir, "late.jpg"))
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	select {
	case paths := <-rec.ch:
		t.Errorf("Unexpected callback after Stop: %v", paths)
	case <-time.After(400 * time.Millisecond):
	}

	// Channel is closed once the event loop exits.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Events channel was not closed")
		}
	}
}
