package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/ui"
)

// Braille cells hold a 2x4 dot matrix. Unicode braille starts at U+2800
// and sets one bit per dot.
const brailleBase = '⠀'

// brailleDots maps [row][col] within a cell to its bit, rows top to bottom.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// RenderGraph draws percentages as a braille area graph of width cells and
// height rows. Each cell holds two samples; the newest samples sit on the
// right and older ones scroll off the left. Columns are colored by their
// highest value.
func RenderGraph(data []float64, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	points := width * 2
	if len(data) > points {
		data = data[len(data)-points:]
	}
	offset := points - len(data)
	dots := height * 4

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colMax := make([]float64, width)

	for i, v := range data {
		if !finite(v) {
			continue
		}
		v = max(0, min(v, 100))
		x := i + offset
		col, sub := x/2, x%2
		colMax[col] = max(colMax[col], v)

		level := int(v / 100 * float64(dots))
		if v > 0 && level == 0 {
			// Keep non-zero values visible.
			level = 1
		}
		for d := 0; d < level; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1) << brailleDots[3-d%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			b.WriteString(lipgloss.NewStyle().Foreground(ui.ThresholdColor(colMax[c])).Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
