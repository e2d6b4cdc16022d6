package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/internal/ui"
)

const (
	defaultCardWidth = 40
	cardMinBarWidth  = 6
	labelWidth       = 5
	percentWidth     = 6
)

// renderCard renders a single host card.
func (m Model) renderCard(host string, width int, selected bool) string {
	style := CardStyle.Width(width)
	if selected {
		style = CardSelectedStyle.Width(width)
	}
	inner := width - 4

	lines := []string{m.renderHostLine(host, inner)}
	lines = append(lines, m.renderStatusLine(host, inner))

	sample, ok := m.samples[host]
	if !ok {
		return style.Render(strings.Join(lines, "\n"))
	}

	hist := m.history[host]
	sparkWidth := inner / 4
	lines = append(lines,
		metricLine("CPU", sample.CPU, hist.CPU(sparkWidth), inner, sparkWidth),
		metricLine("MEM", sample.Mem, hist.Mem(sparkWidth), inner, sparkWidth),
		metricLine("DISK", sample.Disk, hist.Disk(sparkWidth), inner, sparkWidth),
	)
	if top := topProcess(sample.Processes, inner); top != "" {
		lines = append(lines, top)
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderHostLine renders the state indicator, host name and target.
func (m Model) renderHostLine(host string, width int) string {
	sp := m.spinners[host]
	line := sp.Indicator() + " " + HostNameStyle.Render(host)

	if target := m.targets[host]; target != "" && target != host {
		room := width - lipgloss.Width(line) - 1
		if room > 4 {
			line += " " + MutedStyle.Render(truncate(target, room))
		}
	}
	return line
}

// renderStatusLine shows the last error, the connection state, or the
// uptime once data flows.
func (m Model) renderStatusLine(host string, width int) string {
	if errMsg, ok := m.errors[host]; ok {
		return ErrorStyle.Render(truncate(firstLine(errMsg), width))
	}

	state := m.State(host)
	sample, ok := m.samples[host]
	switch {
	case state == remote.StateConnected && ok:
		return LabelStyle.Render(truncate(ui.ShortUptime(sample.Uptime), width))
	case state == remote.StateConnected:
		return MutedStyle.Render("waiting for data")
	case ok:
		return MutedStyle.Render(truncate(string(state)+", last "+ui.ShortUptime(sample.Uptime), width))
	default:
		return MutedStyle.Render(string(state))
	}
}

// metricLine renders "CPU  ▰▰▱▱  12.5% ▁▂▃".
func metricLine(label string, value float64, history []float64, width, sparkWidth int) string {
	barWidth := width - labelWidth - percentWidth - sparkWidth - 2
	if barWidth < cardMinBarWidth {
		barWidth = cardMinBarWidth
		sparkWidth = 0
	}

	pct := fmt.Sprintf("%*s", percentWidth, ui.FormatPercent(value))
	line := LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)) +
		ProgressBar(barWidth, value) + " " +
		ui.PercentStyle(value).Render(pct)
	if sparkWidth > 0 && len(history) > 0 {
		line += " " + ui.RenderSparkline(history, sparkWidth)
	}
	return line
}

// topProcess renders the heaviest process, or "" when there is none.
func topProcess(procs []monitor.ProcessEntry, width int) string {
	if len(procs) == 0 {
		return ""
	}
	p := procs[0]
	suffix := " " + p.CPU + "%"
	return MutedStyle.Render("top ") +
		LabelStyle.Render(truncate(p.Command, width-4-len(suffix))) +
		MutedStyle.Render(suffix)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ui.SymbolFail))
		if line != "" {
			return line
		}
	}
	return ""
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// finite reports whether v is a usable number.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
