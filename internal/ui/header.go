package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders "rstat <version>" with an optional tagline and a
// divider underneath.
func RenderHeader(version, tagline string) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true).Render("rstat"))
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorNeonCyan).Render(version))
	b.WriteString("\n")

	if tagline != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(tagline))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
