package main

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/franz/score-stand/internal/settings"
	"github.com/franz/score-stand/internal/store"
	"github.com/franz/score-stand/internal/util"
)

// dataDir resolves the application data directory with the usual
// precedence: --data-dir flag, MSV_DATA_DIR, config file, then the
// automatic resolution (install dir, ~/.msv, temp).
func dataDir() string {
	if dir := viper.GetString("data-dir"); dir != "" {
		return util.ExpandPath(dir)
	}
	return util.DataDir()
}

// databasePath resolves the library index location. An explicit --db
// wins; otherwise the index lives in the data directory.
func databasePath() string {
	if p := viper.GetString("db"); p != "" {
		return util.ExpandPath(p)
	}
	return filepath.Join(dataDir(), "library.db")
}

// libraryDir resolves the score library root from flag, environment or
// config file, falling back to the directory saved in settings. Empty
// means no library is configured anywhere. Load always returns usable
// settings, so its error only matters to doctor.
func libraryDir() string {
	if dir := viper.GetString("library"); dir != "" {
		return util.ExpandPath(dir)
	}
	s, _ := settings.Load(settingsPath())
	return util.ExpandPath(s.LibraryDir)
}

// settingsPath returns where the settings document lives, honoring
// --data-dir.
func settingsPath() string {
	return filepath.Join(dataDir(), "settings.json")
}

// setlistPath returns where the setlist document lives, honoring
// --data-dir.
func setlistPath() string {
	return filepath.Join(dataDir(), "setlists.json")
}

// openStore opens the library index, applying network tunings when the
// database sits on a network mount.
func openStore(path string) (*store.Store, error) {
	networkOptimized := false
	if info, err := util.DetectNetworkFilesystem(path); err == nil && info.IsNetwork {
		networkOptimized = true
		util.InfoLog("Database on network storage (%s) - applying optimizations", info.Protocol)
	}
	return store.OpenWithOptions(path, &store.OpenOptions{
		NetworkOptimized: networkOptimized,
	})
}
