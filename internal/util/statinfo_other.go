//go:build !unix

package util

import "os"

// fileIdentity has no device/inode notion here; callers fall back to a
// size+mtime key.
func fileIdentity(info os.FileInfo) (dev, ino uint64, ok bool) {
	return 0, 0, false
}
