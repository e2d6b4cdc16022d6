package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the most recent width values as block characters.
// Percentages (all values within 0..100) share a fixed 0-100 scale so lines
// from different hosts compare directly; other data is scaled to its own
// min/max. NaN values draw as a space. The line takes the threshold color
// of the last finite value.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi, ok := sparklineRange(data)
	if !ok {
		return strings.Repeat(" ", len(data))
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	last := math.NaN()
	top := len(sparklineBlocks) - 1
	for _, v := range data {
		if math.IsNaN(v) {
			sb.WriteByte(' ')
			continue
		}
		last = v

		level := top / 2
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(top))
		}
		level = max(0, min(level, top))
		sb.WriteRune(sparklineBlocks[level])
	}

	return lipgloss.NewStyle().Foreground(ThresholdColor(last)).Render(sb.String())
}

// sparklineRange returns the scale for data, ignoring NaN. ok is false
// when there's nothing finite to draw.
func sparklineRange(data []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	if lo >= 0 && hi <= 100 {
		return 0, 100, true
	}
	return lo, hi, true
}
