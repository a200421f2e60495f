package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/score-stand/internal/meta"
	"github.com/franz/score-stand/internal/scan"
	"github.com/franz/score-stand/internal/setlist"
	"github.com/franz/score-stand/internal/settings"
	"github.com/franz/score-stand/internal/store"
	"github.com/franz/score-stand/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and data",
	Long: `Run diagnostic checks to ensure msv can operate correctly.

This command checks:
- Data directory resolution and writability
- Settings and setlist document health
- Database accessibility and integrity
- Library directory readability
- Annotation sidecars whose score is gone
- Scores sharing a composer/title identity

Corrupt documents are reported but never modified or removed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== MSV Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	// 1. Data directory resolution and writability
	results = append(results, checkDataDirectory(dataDir()))

	// 2. Persisted documents
	results = append(results, checkSettings(settingsPath()))
	results = append(results, checkSetlists(setlistPath()))

	// 3. SQLite and the library index
	results = append(results, checkSQLite())
	dbPath := databasePath()
	results = append(results, checkDatabase(dbPath))
	results = append(results, checkDuplicates(dbPath))

	// 4. The library itself
	library := libraryDir()
	if library == "" {
		results = append(results, checkResult{
			name:    "Library directory",
			warning: true,
			message: "not configured (use --library or set library_dir in settings)",
		})
	} else {
		results = append(results, checkLibraryDirectory(library))
		results = append(results, checkOrphanSidecars(library))
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running msv.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! System is ready.")
	}

	return nil
}

// checkDataDirectory verifies the data directory exists and is writable
func checkDataDirectory(dir string) checkResult {
	info, err := os.Stat(dir)
	if err != nil {
		return checkResult{
			name:    "Data directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dir, err),
		}
	}
	if !info.IsDir() {
		return checkResult{
			name:    "Data directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", dir),
		}
	}

	// Probe write permission with a real file
	testFile := filepath.Join(dir, ".msv_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Data directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", dir, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Data directory",
		message: fmt.Sprintf("%s (writable)", dir),
	}
}

// checkSettings verifies the settings document loads cleanly
func checkSettings(path string) checkResult {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return checkResult{
			name:    "Settings",
			message: fmt.Sprintf("%s (not created yet, defaults in effect)", path),
		}
	}

	s, err := settings.Load(path)
	if errors.Is(err, util.ErrCorrupt) {
		return checkResult{
			name:    "Settings",
			warning: true,
			message: fmt.Sprintf("%s is corrupt; defaults in effect, file left in place", path),
		}
	}
	if err != nil {
		return checkResult{
			name:    "Settings",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	return checkResult{
		name:    "Settings",
		message: fmt.Sprintf("%s (version %d)", path, s.Version),
	}
}

// checkSetlists verifies the setlist document loads cleanly
func checkSetlists(path string) checkResult {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return checkResult{
			name:    "Setlists",
			message: fmt.Sprintf("%s (not created yet)", path),
		}
	}

	mgr, err := setlist.Load(path)
	if errors.Is(err, util.ErrCorrupt) {
		return checkResult{
			name:    "Setlists",
			warning: true,
			message: fmt.Sprintf("%s is corrupt; treated as empty, file left in place", path),
		}
	}
	if err != nil {
		return checkResult{
			name:    "Setlists",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	items := 0
	for _, name := range mgr.Names() {
		if list, err := mgr.Items(name); err == nil {
			items += len(list)
		}
	}

	return checkResult{
		name:    "Setlists",
		message: fmt.Sprintf("%s (%d setlists, %d items)", path, len(mgr.Names()), items),
	}
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is compiled in; just verify we can get the version
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies the library index is accessible and intact
func checkDatabase(dbPath string) checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first scan)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	count, _ := db.CountScores()
	size := util.FormatBytes(info.Size())

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, %d scores)", dbPath, size, count),
	}
}

// checkDuplicates reports scores sharing a normalized identity
func checkDuplicates(dbPath string) checkResult {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return checkResult{
			name:    "Duplicate scores",
			message: "no index yet (run 'msv scan')",
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Duplicate scores",
			warning: true,
			message: fmt.Sprintf("skipped, cannot open database: %v", err),
		}
	}
	defer db.Close()

	rows, err := db.AllScores()
	if err != nil {
		return checkResult{
			name:    "Duplicate scores",
			warning: true,
			message: fmt.Sprintf("skipped: %v", err),
		}
	}

	scores := make([]meta.Score, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, meta.Score{
			Path:     r.Path,
			Filename: r.Filename,
			Composer: r.Composer,
			Title:    r.Title,
			Tags:     r.Tags,
		})
	}

	groups := meta.FindDuplicates(scores)
	if len(groups) == 0 {
		return checkResult{
			name:    "Duplicate scores",
			message: fmt.Sprintf("none among %d scores", len(scores)),
		}
	}

	first := groups[0].Scores[0]
	return checkResult{
		name:    "Duplicate scores",
		warning: true,
		message: fmt.Sprintf("%d identities appear more than once (e.g. %s - %s)", len(groups), first.Composer, first.Title),
	}
}

// checkLibraryDirectory verifies the library is readable
func checkLibraryDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Library directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Library directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Library directory",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	message := fmt.Sprintf("%s (%d entries)", path, len(entries))
	if netInfo, err := util.DetectNetworkFilesystem(path); err == nil && netInfo.IsNetwork {
		message += fmt.Sprintf(", network mount (%s)", netInfo.Protocol)
	}

	return checkResult{
		name:    "Library directory",
		message: message,
	}
}

// checkOrphanSidecars finds annotation sidecars whose score is gone
func checkOrphanSidecars(library string) checkResult {
	var orphans []string

	err := filepath.WalkDir(library, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".json" {
			return nil
		}
		if !hasMatchingScore(path) {
			orphans = append(orphans, path)
		}
		return nil
	})
	if err != nil {
		return checkResult{
			name:    "Orphaned sidecars",
			warning: true,
			message: fmt.Sprintf("skipped: %v", err),
		}
	}

	if len(orphans) == 0 {
		return checkResult{
			name:    "Orphaned sidecars",
			message: "none found",
		}
	}

	shown := orphans
	if len(shown) > 3 {
		shown = shown[:3]
	}
	message := fmt.Sprintf("%d sidecars without a score (%s", len(orphans), strings.Join(shown, ", "))
	if len(orphans) > len(shown) {
		message += ", ..."
	}
	message += ")"

	return checkResult{
		name:    "Orphaned sidecars",
		warning: true,
		message: message,
	}
}

// hasMatchingScore reports whether the sidecar at jsonPath sits next to
// the score it belongs to, trying both extension spellings.
func hasMatchingScore(jsonPath string) bool {
	base := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath))
	for _, ext := range []string{scan.ScoreExtension, strings.ToUpper(scan.ScoreExtension)} {
		if info, err := os.Stat(base + ext); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
