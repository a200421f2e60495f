package util

import (
	"crypto/sha1"
	"fmt"
	"os"
)

// GenerateFileKey builds a stable key for a score file from filesystem
// metadata: SHA1 over (device, inode, size, mtime). The index uses it to
// skip unchanged files on rescan without reading PDF content; an edited
// or replaced file changes mtime or inode and gets re-parsed.
func GenerateFileKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	return FileKeyFromInfo(info), nil
}

// FileKeyFromInfo is GenerateFileKey for an already-stat'd file; the
// scanner uses it to avoid a second stat per file.
func FileKeyFromInfo(info os.FileInfo) string {
	h := sha1.New()
	if dev, ino, ok := fileIdentity(info); ok {
		fmt.Fprintf(h, "%d:%d:%d:%d", dev, ino, info.Size(), info.ModTime().Unix())
	} else {
		// Portable fallback: size and mtime only.
		fmt.Fprintf(h, "%d:%d", info.Size(), info.ModTime().Unix())
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
