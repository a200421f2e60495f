// Package pathutil canonicalizes score paths between the two spellings a
// shared music library gets addressed by: the Windows drive-letter view
// (Z:\Scores\bach.pdf) and the POSIX mount view of the same filesystem
// (/mnt/z/Scores/bach.pdf), as seen under WSL. Setlists and sidecars store
// the portable form; callers convert to the native form right before any
// filesystem call.
//
// Everything here is a pure string transform over path syntax. No function
// touches the filesystem, and malformed input passes through unchanged
// rather than failing.
package pathutil

import (
	"runtime"
	"strings"
)

const mountPrefix = "/mnt/"

// ToPortable returns the storage form of a path: forward slashes only,
// with the addressing scheme (drive letter or mount prefix) left as-is.
// Stored this way a path needs no JSON backslash escaping and can be
// re-resolved by ToNative on whichever platform loads it. Idempotent.
func ToPortable(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// ToNative returns the spelling usable by the current platform's
// filesystem API. Drive-letter paths become /mnt/<letter>/ paths on POSIX
// platforms; mount paths become drive-letter paths on Windows. Paths
// carrying neither scheme pass through with separators normalized.
// Idempotent.
func ToNative(path string) string {
	if runtime.GOOS == "windows" {
		return toNativeWindows(path)
	}
	return toNativePOSIX(path)
}

// toNativePOSIX is the POSIX (Linux, WSL, macOS) translation: X:/a/b and
// X:\a\b map to /mnt/x/a/b with the drive letter lower-cased; everything
// else keeps its meaning and only gets separator cleanup.
func toNativePOSIX(path string) string {
	if path == "" {
		return ""
	}
	p := collapseSlashes(ToPortable(path))
	if letter, rest, ok := splitDrive(p); ok {
		if rest == "" {
			return mountPrefix + letter
		}
		return mountPrefix + letter + "/" + rest
	}
	return p
}

// toNativeWindows is the Windows translation: /mnt/x/a/b maps to X:\a\b
// with the drive letter upper-cased; forward slashes become backslashes.
func toNativeWindows(path string) string {
	if path == "" {
		return ""
	}
	p := collapseSlashes(ToPortable(path))
	if letter, rest, ok := splitMount(p); ok {
		drive := strings.ToUpper(letter) + ":"
		if rest == "" {
			return drive + `\`
		}
		return drive + `\` + strings.ReplaceAll(rest, "/", `\`)
	}
	if letter, rest, ok := splitDrive(p); ok {
		drive := strings.ToUpper(letter) + ":"
		if rest == "" {
			return drive + `\`
		}
		return drive + `\` + strings.ReplaceAll(rest, "/", `\`)
	}
	return strings.ReplaceAll(p, "/", `\`)
}

// splitDrive recognizes X:/rest (already separator-normalized) and
// returns the lower-cased letter and the rest with no leading slash.
// Drive-relative spellings (X:rest) are not translated.
func splitDrive(p string) (letter, rest string, ok bool) {
	if len(p) < 2 || p[1] != ':' || !isASCIILetter(p[0]) {
		return "", "", false
	}
	if len(p) == 2 {
		return strings.ToLower(p[:1]), "", true
	}
	if p[2] != '/' {
		return "", "", false
	}
	return strings.ToLower(p[:1]), strings.TrimPrefix(p[2:], "/"), true
}

// splitMount recognizes /mnt/<single letter>[/rest]. Longer names under
// /mnt (NAS mounts like /mnt/music) are real directories, not drive
// views, and are left alone.
func splitMount(p string) (letter, rest string, ok bool) {
	if !strings.HasPrefix(p, mountPrefix) {
		return "", "", false
	}
	tail := p[len(mountPrefix):]
	if tail == "" || !isASCIILetter(tail[0]) {
		return "", "", false
	}
	if len(tail) == 1 {
		return strings.ToLower(tail), "", true
	}
	if tail[1] != '/' {
		return "", "", false
	}
	return strings.ToLower(tail[:1]), strings.TrimPrefix(tail[1:], "/"), true
}

// collapseSlashes removes redundant separators, keeping a leading double
// slash intact so UNC spellings survive the trip.
func collapseSlashes(p string) string {
	unc := strings.HasPrefix(p, "//")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if unc {
		p = "/" + p
	}
	return p
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
