package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/franz/score-stand/internal/scan"
	"github.com/franz/score-stand/internal/util"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library and index changes as they happen",
	Long: `Watch the library directory and keep the index in sync.

A full scan runs first so the watcher only has to handle deltas. New
and modified PDFs are indexed after a short settle delay; removed
files and directories drop out of the index. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	library := libraryDir()
	if library == "" {
		return fmt.Errorf("no library directory configured (use --library or set library_dir in settings)")
	}

	info, err := os.Stat(library)
	if err != nil {
		return fmt.Errorf("library directory does not exist: %s", library)
	}
	if !info.IsDir() {
		return fmt.Errorf("library path is not a directory: %s", library)
	}

	dbPath := databasePath()
	util.InfoLog("Opening database: %s", dbPath)

	db, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Catch up before watching; events only carry changes from now on.
	scanner := scan.New(&scan.Config{
		Store:       db,
		Concurrency: util.WorkerCount(library, 0),
	})
	if _, err := scanner.Scan(ctx, library); err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	watcher, err := scan.NewWatcher(&scan.WatchConfig{
		Store: db,
		Root:  library,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	util.InfoLog("Press Ctrl-C to stop")

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher failed: %w", err)
	}

	util.InfoLog("")
	util.SuccessLog("Watcher stopped")
	return nil
}
