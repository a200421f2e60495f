//go:build unix

package util

import (
	"os"
	"syscall"
)

// fileIdentity extracts the device and inode numbers backing a file,
// when the platform exposes them.
func fileIdentity(info os.FileInfo) (dev, ino uint64, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return uint64(stat.Dev), uint64(stat.Ino), true
}
