package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Accent colors for headers and spinners.
const (
	ColorNeonPink   lipgloss.Color = "#FF2E97"
	ColorNeonPurple lipgloss.Color = "#BF40FF"
	ColorNeonCyan   lipgloss.Color = "#00FFFF"
	ColorNeonGreen  lipgloss.Color = "#39FF14"
)

// GradientColors is the spinner color cycle.
var GradientColors = []lipgloss.Color{ColorNeonPink, ColorNeonPurple, ColorNeonCyan, ColorNeonGreen}

// Percentage thresholds for metric coloring.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// ThresholdColor returns the status color for a percentage. Values at or
// above CriticalThreshold are red, at or above WarningThreshold yellow.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorError
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// PercentStyle returns a style colored by ThresholdColor. NaN renders muted.
func PercentStyle(percent float64) lipgloss.Style {
	if percent != percent {
		return lipgloss.NewStyle().Foreground(ColorMuted)
	}
	return lipgloss.NewStyle().Foreground(ThresholdColor(percent))
}
