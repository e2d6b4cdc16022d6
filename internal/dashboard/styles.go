package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/ui"
)

// Dashboard chrome colors
const (
	ColorSurfaceBg     = lipgloss.Color("#12121A")
	ColorBorder        = lipgloss.Color("#2A2A4A")
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")
	ColorAccent        = lipgloss.Color("#FF2E97")
	ColorGraph         = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	HostNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError)
)

// ProgressBar renders a bracketless bar colored by the percentage. NaN
// renders an empty muted bar.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent != percent {
		return MutedStyle.Render(strings.Repeat("▱", width))
	}

	percent = max(0, min(percent, 100))
	filled := int(percent / 100 * float64(width))
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(ui.ThresholdColor(percent)).Render(bar)
}

// SectionTitle renders "title ─── value" filled to width.
func SectionTitle(title, value string, width int) string {
	fill := width - lipgloss.Width(title) - lipgloss.Width(value) - 2
	if fill < 1 {
		fill = 1
	}
	return lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(title) +
		" " + MutedStyle.Render(strings.Repeat("─", fill)) + " " +
		lipgloss.NewStyle().Foreground(ColorGraph).Bold(true).Render(value)
}
