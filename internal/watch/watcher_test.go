package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherFiresOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32
	deb := NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	defer deb.Stop()

	w, err := NewWatcher(dir, []string{"*.schema.yaml"}, deb)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	// Let the watch become active before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "a.schema.yaml"), []byte("schema: v1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if fired.Load() == 0 {
		t.Fatalf("watcher did not fire on a source file write")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	var fired atomic.Int32
	deb := NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	defer deb.Stop()

	w, err := NewWatcher(dir, []string{"*.schema.yaml"}, deb)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if fired.Load() != 0 {
		t.Fatalf("watcher fired for a non-source file")
	}
}
