package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/franz/score-stand/internal/pathutil"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)

	d := newDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger("a.pdf")
	}
	d.Trigger("b.pdf")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["a.pdf"] != 1 {
		t.Errorf("expected a single fire for a.pdf, got %d", fired["a.pdf"])
	}
	if fired["b.pdf"] != 1 {
		t.Errorf("expected a single fire for b.pdf, got %d", fired["b.pdf"])
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	var fires int

	d := newDebouncer(30*time.Millisecond, func(string) {
		mu.Lock()
		fires++
		mu.Unlock()
	})

	d.Trigger("a.pdf")
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fires != 0 {
		t.Errorf("expected no fires after Stop, got %d", fires)
	}
}

// waitFor polls until check passes or the deadline expires.
func waitFor(t *testing.T, what string, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcherIndexesAndRemoves(t *testing.T) {
	lib, db := newTestLibrary(t)

	w, err := NewWatcher(&WatchConfig{
		Store:    db,
		Root:     lib,
		Debounce: 30 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
		w.Close()
	}()

	// A new PDF gets indexed once events settle
	path := filepath.Join(lib, "Bach - Air -- strings.pdf")
	writeScore(t, path, "%PDF-1.4")

	portable := pathutil.ToPortable(path)
	waitFor(t, "score to be indexed", func() bool {
		sc, err := db.GetScoreByPath(portable)
		return err == nil && sc != nil && sc.Title == "Air"
	})

	// Deleting the file drops the row
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove score: %v", err)
	}
	waitFor(t, "score to be dropped", func() bool {
		sc, err := db.GetScoreByPath(portable)
		return err == nil && sc == nil
	})
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	lib, db := newTestLibrary(t)

	w, err := NewWatcher(&WatchConfig{
		Store:    db,
		Root:     lib,
		Debounce: 30 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
		w.Close()
	}()

	// Create a directory that already contains a score
	sub := filepath.Join(lib, "baroque")
	path := filepath.Join(sub, "Handel - Sarabande.pdf")
	writeScore(t, path, "%PDF-1.4")

	waitFor(t, "score in new directory to be indexed", func() bool {
		sc, err := db.GetScoreByPath(pathutil.ToPortable(path))
		return err == nil && sc != nil && sc.Composer == "Handel"
	})

	// Removing the directory drops everything under it
	if err := os.RemoveAll(sub); err != nil {
		t.Fatalf("Failed to remove directory: %v", err)
	}
	waitFor(t, "rows under removed directory to be dropped", func() bool {
		count, err := db.CountScores()
		return err == nil && count == 0
	})
}
