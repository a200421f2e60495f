//go:build !linux && !darwin

package util

// On platforms without a usable statfs we assume local storage; the
// caller just ends up with the default retry policy.
func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	return &NetworkInfo{}, nil
}
