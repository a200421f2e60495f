package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".msv"

// DataDir resolves the directory holding the application's own artifacts
// (setlist document, settings, library index). Priority: the directory
// the executable lives in, so a portable install keeps its data beside
// the binary; then a dot directory under the user home; then the OS temp
// directory as a last resort. The chosen fallback directory is created
// on first use.
func DataDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if isWritableDir(dir) {
			return dir
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, appDirName)
		if err := os.MkdirAll(dir, 0755); err == nil && isWritableDir(dir) {
			return dir
		}
	}

	dir := filepath.Join(os.TempDir(), "msv")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// isWritableDir probes writability by creating and removing a temp file;
// permission bits alone lie on network mounts.
func isWritableDir(dir string) bool {
	f, err := os.CreateTemp(dir, ".msv-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// ExpandPath expands a leading ~ to the user home directory. Flag and
// config values take it; the shell does not expand inside quotes.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// FormatBytes formats a byte count in human-readable units
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
