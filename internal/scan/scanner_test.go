package scan

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/franz/score-stand/internal/store"
)

func TestIsScoreFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"Bach - Air.pdf", true},
		{"Bach - Air.PDF", true}, // Case insensitive
		{"Bach - Air.Pdf", true},
		{"notes.txt", false},
		{"cover.jpg", false},
		{"score", false},
		{".pdf", true},
	}

	for _, tt := range tests {
		result := IsScoreFile(tt.path)
		if result != tt.expected {
			t.Errorf("IsScoreFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func newTestLibrary(t *testing.T) (string, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	lib := filepath.Join(tmpDir, "lib")
	if err := os.MkdirAll(lib, 0755); err != nil {
		t.Fatalf("Failed to create library dir: %v", err)
	}

	db, err := store.Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return lib, db
}

func writeScore(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestScannerWithRealFiles(t *testing.T) {
	lib, db := newTestLibrary(t)

	writeScore(t, filepath.Join(lib, "baroque", "Bach - Air -- strings.pdf"), "%PDF-1.4 a")
	writeScore(t, filepath.Join(lib, "Handel - Sarabande.pdf"), "%PDF-1.4 b")
	writeScore(t, filepath.Join(lib, "README.txt"), "not a score")

	scanner := New(&Config{
		Store:       db,
		Concurrency: 2,
	})

	result, err := scanner.Scan(context.Background(), lib)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.ScoresFound != 2 || result.ScoresIndexed != 2 {
		t.Errorf("Expected 2 scores found and indexed, got %d / %d", result.ScoresFound, result.ScoresIndexed)
	}

	scores, err := db.AllScores()
	if err != nil {
		t.Fatalf("Failed to read catalog: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 catalog rows, got %d", len(scores))
	}

	// Default order is composer-first, so Bach comes up first
	if scores[0].Composer != "Bach" || scores[0].Title != "Air" {
		t.Errorf("First row is %s / %s, expected Bach / Air", scores[0].Composer, scores[0].Title)
	}
	if want := []string{"baroque", "strings"}; !reflect.DeepEqual(scores[0].Tags, want) {
		t.Errorf("Folder and filename tags not merged: %v", scores[0].Tags)
	}

	// File keys must be unique
	if scores[0].FileKey == scores[1].FileKey {
		t.Errorf("Duplicate file key: %s", scores[0].FileKey)
	}
}

func TestScannerIdempotency(t *testing.T) {
	lib, db := newTestLibrary(t)
	writeScore(t, filepath.Join(lib, "Bach - Air.pdf"), "%PDF-1.4")

	scanner := New(&Config{
		Store:       db,
		Concurrency: 1,
	})

	ctx := context.Background()

	result1, err := scanner.Scan(ctx, lib)
	if err != nil {
		t.Fatalf("First scan failed: %v", err)
	}
	result2, err := scanner.Scan(ctx, lib)
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}

	if result1.ScoresIndexed != 1 {
		t.Errorf("First scan: expected 1 score indexed, got %d", result1.ScoresIndexed)
	}
	if result2.ScoresIndexed != 0 || result2.ScoresSkipped != 1 {
		t.Errorf("Second scan: expected everything unchanged, got indexed %d skipped %d",
			result2.ScoresIndexed, result2.ScoresSkipped)
	}

	count, err := db.CountScores()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 catalog row after two scans, got %d", count)
	}
}

func TestScannerDetectsChangedFile(t *testing.T) {
	lib, db := newTestLibrary(t)
	path := filepath.Join(lib, "Bach - Air.pdf")
	writeScore(t, path, "%PDF-1.4 original")

	scanner := New(&Config{Store: db, Concurrency: 1})
	ctx := context.Background()

	if _, err := scanner.Scan(ctx, lib); err != nil {
		t.Fatalf("First scan failed: %v", err)
	}

	// Overwrite with different content so the file key changes
	writeScore(t, path, "%PDF-1.4 replaced with a longer body")

	result, err := scanner.Scan(ctx, lib)
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if result.ScoresIndexed != 1 {
		t.Errorf("Expected changed file to be re-indexed, got %d", result.ScoresIndexed)
	}
}

func TestScannerPrune(t *testing.T) {
	lib, db := newTestLibrary(t)
	keep := filepath.Join(lib, "Bach - Air.pdf")
	gone := filepath.Join(lib, "Handel - Sarabande.pdf")
	writeScore(t, keep, "%PDF-1.4 a")
	writeScore(t, gone, "%PDF-1.4 b")

	scanner := New(&Config{Store: db, Concurrency: 1, Prune: true})
	ctx := context.Background()

	if _, err := scanner.Scan(ctx, lib); err != nil {
		t.Fatalf("First scan failed: %v", err)
	}

	if err := os.Remove(gone); err != nil {
		t.Fatalf("Failed to remove score: %v", err)
	}

	result, err := scanner.Scan(ctx, lib)
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}
	if result.ScoresPruned != 1 {
		t.Errorf("Expected 1 pruned score, got %d", result.ScoresPruned)
	}

	count, err := db.CountScores()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 catalog row after prune, got %d", count)
	}
}
