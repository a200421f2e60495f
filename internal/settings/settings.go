// Package settings persists the viewer's preferences as a typed
// document beside the other application artifacts. Loading tolerates
// missing or malformed fields: each one falls back to its default so a
// stale or hand-edited file never blocks startup.
package settings

import (
	"path/filepath"
	"regexp"

	"github.com/franz/score-stand/internal/annot"
	"github.com/franz/score-stand/internal/docstore"
	"github.com/franz/score-stand/internal/util"
)

// CurrentVersion is the settings schema version written on save
const CurrentVersion = 1

// DefaultWindowSize matches the initial geometry of the viewer window
const DefaultWindowSize = "1200x900"

var windowSizeRe = regexp.MustCompile(`^\d+x\d+$`)

// Settings is the persisted preference document
type Settings struct {
	Version     int    `json:"version"`
	LibraryDir  string `json:"library_dir,omitempty"`
	SortByTitle bool   `json:"sort_by_title"`
	WindowSize  string `json:"window_size"`
	PenColor    string `json:"pen_color"`
	PenSize     int    `json:"pen_size"`
	TextFont    string `json:"text_font"`
}

// Defaults returns a fresh settings document
func Defaults() Settings {
	return Settings{
		Version:    CurrentVersion,
		WindowSize: DefaultWindowSize,
		PenColor:   annot.DefaultColor,
		PenSize:    annot.DefaultSize,
		TextFont:   annot.DefaultFont,
	}
}

// Normalize forces every field into its valid range, replacing values
// the toolbar could never produce with their defaults.
func (s *Settings) Normalize() {
	s.Version = CurrentVersion

	if !windowSizeRe.MatchString(s.WindowSize) {
		s.WindowSize = DefaultWindowSize
	}
	if !validColor(s.PenColor) {
		s.PenColor = annot.DefaultColor
	}
	if s.PenSize == 0 {
		s.PenSize = annot.DefaultSize
	} else {
		s.PenSize = annot.ClampSize(s.PenSize)
	}
	if s.TextFont == "" {
		s.TextFont = annot.DefaultFont
	}
}

// DefaultPath is where the settings document lives
func DefaultPath() string {
	return filepath.Join(util.DataDir(), "settings.json")
}

// Load reads the settings document, applying defaults for anything
// missing or out of range. A corrupt file yields usable defaults along
// with the error; the broken content stays on disk untouched.
func Load(path string) (Settings, error) {
	s, err := docstore.Load(path, Defaults())
	s.Normalize()
	return s, err
}

// Save writes the settings document atomically
func Save(path string, s Settings) error {
	s.Normalize()
	return docstore.Save(path, s)
}

func validColor(color string) bool {
	for _, c := range annot.PenColors {
		if c == color {
			return true
		}
	}
	return false
}
