// Package scan keeps the library catalog in sync with the PDFs on
// disk: a parallel directory walk for full rescans and a filesystem
// watcher for incremental updates while the stand is running.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/franz/score-stand/internal/meta"
	"github.com/franz/score-stand/internal/pathutil"
	"github.com/franz/score-stand/internal/store"
	"github.com/franz/score-stand/internal/util"
)

// ScoreExtension is the only file type the library indexes
const ScoreExtension = ".pdf"

// Scanner discovers score PDFs in a library tree
type Scanner struct {
	store       *store.Store
	concurrency int
	prune       bool
}

// Config holds scanner configuration
type Config struct {
	Store       *store.Store
	Concurrency int
	Prune       bool // Remove catalog rows whose file is gone
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	return &Scanner{
		store:       cfg.Store,
		concurrency: cfg.Concurrency,
		prune:       cfg.Prune,
	}
}

// Result represents a scan result
type Result struct {
	ScoresFound   int
	ScoresIndexed int
	ScoresSkipped int
	ScoresPruned  int
	Errors        []error
}

// Scan walks the library root and brings the catalog up to date.
// Unchanged files (same size, mtime and identity as last time) are
// skipped without re-parsing.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	util.InfoLog("Starting scan of: %s", root)

	result := &Result{
		Errors: make([]error, 0),
	}

	// Workers and the batch writer both report errors
	var errMu sync.Mutex
	appendErr := func(err error) {
		errMu.Lock()
		result.Errors = append(result.Errors, err)
		errMu.Unlock()
	}

	// Pre-load known file keys for quick change detection
	index, err := s.store.FileKeyIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load file key index: %w", err)
	}
	util.DebugLog("Loaded %d catalogued scores", len(index))

	var indexMu sync.RWMutex

	// Channel for discovered file paths
	filePaths := make(chan string, 100)

	// Channel for changed rows headed for the batch writer
	changed := make(chan *store.Score, 500)

	// Every path seen this scan, for pruning
	var seenMu sync.Mutex
	var seen []string

	var found atomic.Int64
	var processed atomic.Int64
	var indexed atomic.Int64
	var skipped atomic.Int64

	var wg sync.WaitGroup

	progressCtx, cancelProgress := context.WithCancel(ctx)
	defer cancelProgress()

	// Progress bar only on an interactive terminal
	isTTY := util.IsTerminal(os.Stdout.Fd())
	var bar *progressbar.ProgressBar

	if isTTY && !util.IsQuiet() {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-progressCtx.Done():
				return
			case <-ticker.C:
				f := found.Load()
				if f == 0 {
					continue
				}
				if bar != nil {
					bar.Describe(fmt.Sprintf("Scanning | %d found | %d indexed | %d unchanged",
						f, indexed.Load(), skipped.Load()))
					bar.Set64(processed.Load())
				} else {
					util.InfoLog("Progress: found %d scores, processed %d (indexed: %d, unchanged: %d)",
						f, processed.Load(), indexed.Load(), skipped.Load())
				}
			}
		}
	}()

	// Batch writer goroutine
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		batch := make([]*store.Score, 0, 500)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		flush := func() {
			if len(batch) == 0 {
				return
			}
			if err := s.store.UpsertScoreBatch(batch); err != nil {
				util.ErrorLog("Failed to write batch: %v", err)
				appendErr(err)
			}
			batch = batch[:0]
		}

		for {
			select {
			case row, ok := <-changed:
				if !ok {
					flush()
					return
				}
				batch = append(batch, row)
				if len(batch) >= 500 {
					flush()
				}
			case <-ticker.C:
				flush()
			case <-ctx.Done():
				flush()
				return
			}
		}
	}()

	// Worker pool
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range filePaths {
				select {
				case <-ctx.Done():
					return
				default:
				}

				isNew, err := s.processFile(ctx, root, path, index, &indexMu, changed, &seenMu, &seen)
				processed.Add(1)

				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					util.ErrorLog("Failed to process %s: %v", path, err)
					appendErr(err)
				} else if isNew {
					indexed.Add(1)
				} else {
					skipped.Add(1)
				}
			}
		}()
	}

	// Walk the library tree
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			appendErr(fmt.Errorf("access error: %s: %w", path, err))
			return nil // Continue walking
		}

		if d.IsDir() {
			return nil
		}

		if IsScoreFile(path) {
			found.Add(1)
			select {
			case filePaths <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	// Close channel and wait for workers
	close(filePaths)
	wg.Wait()

	// Close rows channel and wait for the batch writer
	close(changed)
	writerWg.Wait()

	cancelProgress()

	if bar != nil {
		bar.Finish()
	}

	result.ScoresFound = int(found.Load())
	result.ScoresIndexed = int(indexed.Load())
	result.ScoresSkipped = int(skipped.Load())

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if walkErr != nil {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	// Drop rows whose files are gone. Only safe after a complete walk.
	if s.prune {
		pruned, err := s.store.PruneExcept(seen)
		if err != nil {
			return result, fmt.Errorf("prune failed: %w", err)
		}
		result.ScoresPruned = pruned
	}

	util.SuccessLog("Scan complete: %d scores found, %d indexed, %d unchanged, %d pruned, %d errors",
		result.ScoresFound, result.ScoresIndexed, result.ScoresSkipped, result.ScoresPruned, len(result.Errors))

	return result, nil
}

// processFile stats one PDF and queues a catalog row if the file is new
// or changed since the last scan. Returns (indexed, error).
func (s *Scanner) processFile(ctx context.Context, root, path string, index map[string]string, indexMu *sync.RWMutex, changed chan<- *store.Score, seenMu *sync.Mutex, seen *[]string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	fileKey := util.FileKeyFromInfo(info)
	portable := pathutil.ToPortable(path)

	seenMu.Lock()
	*seen = append(*seen, portable)
	seenMu.Unlock()

	indexMu.RLock()
	known := index[portable]
	indexMu.RUnlock()

	if known == fileKey {
		util.DebugLog("Unchanged: %s", path)
		return false, nil
	}

	parsed := meta.ParseScore(root, path)

	row := &store.Score{
		Path:      portable,
		FileKey:   fileKey,
		Filename:  parsed.Filename,
		Composer:  parsed.Composer,
		Title:     parsed.Title,
		Tags:      parsed.Tags,
		SizeBytes: info.Size(),
		MtimeUnix: info.ModTime().Unix(),
	}

	// The batch writer stops on cancellation, so the send must too.
	select {
	case changed <- row:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	indexMu.Lock()
	index[portable] = fileKey
	indexMu.Unlock()

	util.DebugLog("Indexed: %s (%s / %s)", path, parsed.Composer, parsed.Title)
	return true, nil
}

// IsScoreFile checks if a path has the score extension
func IsScoreFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ScoreExtension
}
