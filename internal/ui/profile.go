package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size can't be read.
const DefaultWidth = 100

// ConfigureOutput sets the global lipgloss color profile for output written
// to f. Colors are off when noColor is set, NO_COLOR is present, or f is not
// a terminal.
func ConfigureOutput(f *os.File, noColor bool) termenv.Profile {
	profile := termenv.Ascii
	if !noColor && os.Getenv("NO_COLOR") == "" && IsTerminal(f) {
		profile = termenv.NewOutput(f).EnvColorProfile()
	}
	lipgloss.SetColorProfile(profile)
	return profile
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of f, or DefaultWidth.
func TerminalWidth(f *os.File) int {
	if !IsTerminal(f) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}
