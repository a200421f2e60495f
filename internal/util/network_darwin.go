//go:build darwin

package util

import (
	"strings"
	"syscall"
)

var darwinNetworkTypes = []string{"nfs", "smbfs", "afpfs", "cifs", "webdav", "osxfuse", "macfuse"}

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return info, nil
	}

	// statfs on macOS carries the fs type and mount point as
	// NUL-terminated int8 arrays.
	fsTypeName := strings.ToLower(cString(stat.Fstypename[:]))
	for _, netType := range darwinNetworkTypes {
		if strings.Contains(fsTypeName, netType) {
			info.IsNetwork = true
			info.Protocol = fsTypeName
			info.MountPath = cString(stat.Mntonname[:])
			break
		}
	}

	return info, nil
}

func cString(arr []int8) string {
	buf := make([]byte, 0, len(arr))
	for _, c := range arr {
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf)
}
