//go:build linux

package util

import (
	"bufio"
	"os"
	"strings"
	"syscall"
)

// Statfs magic numbers for filesystems we treat as network-backed.
// V9FS covers WSL2's /mnt/<drive> views, which behave like a network
// mount for write latency and transient errors.
var networkFsMagic = map[uint32]string{
	0x6969:     "nfs", // NFS_SUPER_MAGIC
	0xff534d42: "cifs",
	0x517b:     "smb", // SMB_SUPER_MAGIC
	0x01021994: "smbfs",
	0xfe534d42: "smb2",
	0x01021997: "9p", // V9FS_MAGIC (WSL2 drvfs)
	0x65735546: "fuse",
}

// Mount-table filesystem types treated as network-backed. drvfs is the
// WSL1 spelling of a translated Windows drive.
var networkFsNames = []string{
	"nfs", "nfs4", "cifs", "smb", "smbfs", "smb3",
	"9p", "drvfs", "fuse.sshfs", "fuse.rclone",
}

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err == nil {
		if proto, found := networkFsMagic[uint32(stat.Type)]; found {
			info.IsNetwork = true
			info.Protocol = proto
		}
	}

	// Refine with /proc/mounts: the longest mount point containing the
	// path tells us the mount location and the exact fs type name.
	mounts, err := parseProcMounts()
	if err != nil {
		return info, nil
	}

	bestMatch := ""
	for mountPoint, fsType := range mounts {
		if !strings.HasPrefix(path, mountPoint) || len(mountPoint) <= len(bestMatch) {
			continue
		}
		bestMatch = mountPoint

		fsTypeLower := strings.ToLower(fsType)
		matched := false
		for _, name := range networkFsNames {
			if strings.Contains(fsTypeLower, name) {
				matched = true
				break
			}
		}
		if matched {
			info.IsNetwork = true
			info.Protocol = fsTypeLower
			info.MountPath = mountPoint
		} else {
			// A longer, more specific local mount overrides a shorter
			// network parent.
			info.IsNetwork = false
			info.Protocol = ""
			info.MountPath = ""
		}
	}

	return info, nil
}

// parseProcMounts maps mount points to filesystem type names.
func parseProcMounts() (map[string]string, error) {
	file, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mounts := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		// device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts[fields[1]] = fields[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}
