package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/score-stand/internal/scan"
	"github.com/franz/score-stand/internal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index the score library",
	Long: `Walk the library directory and synchronize the score index.

Every PDF is identified by its filename ("Composer - Title -- tags.pdf")
and the folders between the library root and the file, which become
tags. Files already in the index with an unchanged file key are
skipped, so repeated scans are cheap.

Use --prune to drop index rows for files that no longer exist.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntP("workers", "w", 0, "concurrent scan workers (0 = auto)")
	scanCmd.Flags().Bool("prune", false, "remove index rows whose files are gone")
}

func runScan(cmd *cobra.Command, args []string) error {
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

	workersFlag, _ := cmd.Flags().GetInt("workers")
	prune, _ := cmd.Flags().GetBool("prune")

	dbPath := databasePath()
	util.InfoLog("Opening database: %s", dbPath)

	db, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	workers := util.WorkerCount(library, workersFlag)

	util.InfoLog("=== Library Scan ===")
	util.InfoLog("Library: %s", library)
	util.InfoLog("Workers: %d", workers)

	scanner := scan.New(&scan.Config{
		Store:       db,
		Concurrency: workers,
		Prune:       prune,
	})

	startTime := time.Now()

	result, err := scanner.Scan(ctx, library)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	duration := time.Since(startTime)

	util.InfoLog("")
	util.SuccessLog("=== Scan Summary ===")
	util.InfoLog("Total time: %v", duration.Round(time.Millisecond))
	util.InfoLog("Scores found: %d", result.ScoresFound)
	util.InfoLog("  Indexed: %d", result.ScoresIndexed)
	util.InfoLog("  Unchanged: %d", result.ScoresSkipped)
	if prune {
		util.InfoLog("  Pruned: %d", result.ScoresPruned)
	}
	if len(result.Errors) > 0 {
		util.WarnLog("  Errors: %d", len(result.Errors))
		for i, err := range result.Errors {
			if i >= 10 {
				util.WarnLog("  ... and %d more errors", len(result.Errors)-10)
				break
			}
			util.WarnLog("  - %v", err)
		}
	}

	total, err := db.CountScores()
	if err != nil {
		return fmt.Errorf("failed to count scores: %w", err)
	}

	util.InfoLog("")
	util.InfoLog("Library index now holds %d scores", total)
	util.InfoLog("Next step: msv list")

	return nil
}
