package util

import (
	"fmt"
	"path/filepath"
)

// NetworkInfo describes the filesystem a path lives on, as far as the
// retry policy cares: local disk versus a network or translated mount.
type NetworkInfo struct {
	IsNetwork bool   // true for NFS/SMB/WSL-translated mounts
	Protocol  string // nfs, cifs, 9p, drvfs, ... or empty when local
	MountPath string // mount point containing the path, if known
}

// DetectNetworkFilesystem reports whether a path sits on a network or
// translated filesystem. Score libraries commonly live on NAS shares or,
// under WSL, behind a drvfs/9p view of a Windows drive; writes there see
// transient failures that deserve retries. Detection is best-effort and
// platform-specific.
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return detectPlatformNetwork(absPath)
}

// IsNetworkPath is DetectNetworkFilesystem reduced to a yes/no, treating
// detection failure as local.
func IsNetworkPath(path string) bool {
	info, err := DetectNetworkFilesystem(path)
	if err != nil {
		return false
	}
	return info.IsNetwork
}

// RetryConfigFor picks the retry policy for the filesystem holding path.
func RetryConfigFor(path string) *RetryConfig {
	if IsNetworkPath(path) {
		return NetworkRetryConfig()
	}
	return DefaultRetryConfig()
}
