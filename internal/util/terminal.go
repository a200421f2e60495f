package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether the file descriptor is an interactive
// terminal; progress bars and colored output are suppressed otherwise.
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TerminalWidth returns the stdout width, or fallback when stdout is not
// a terminal or the size cannot be determined.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
