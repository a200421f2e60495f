package util

import "runtime"

// WorkerCount picks the scan concurrency for a library root. An explicit
// flag value wins. NAS shares and WSL-translated mounts are easy to
// overwhelm with parallel stats, so network filesystems get a small fixed
// pool; local storage scales with the CPU count.
func WorkerCount(root string, flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}

	if info, err := DetectNetworkFilesystem(root); err == nil && info.IsNetwork {
		DebugLog("network filesystem (%s) at %s: limiting scan workers", info.Protocol, info.MountPath)
		return 2
	}

	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 2 {
		n = 2
	}
	return n
}
