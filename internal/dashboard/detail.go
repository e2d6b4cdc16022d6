package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/ui"
)

const (
	detailGraphHeight = 3
	detailMinWidth    = 40
)

var detailContainerStyle = lipgloss.NewStyle().Padding(1, 2)

// renderDetailView renders the expanded view of the selected host.
func (m Model) renderDetailView() string {
	host := m.SelectedHost()
	if host == "" {
		return LabelStyle.Render("No host selected")
	}

	width := max(m.width-6, detailMinWidth)

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(host, width))
	b.WriteString("\n\n")

	sample, ok := m.samples[host]
	if !ok {
		b.WriteString(LabelStyle.Render("Waiting for the first sample..."))
		b.WriteString("\n\n")
		b.WriteString(m.renderDetailFooter())
		return detailContainerStyle.Render(b.String())
	}

	hist := m.history[host]
	graphWidth := width / 2
	b.WriteString(detailSection("CPU", sample.CPU, hist.CPU(graphWidth*2), width, graphWidth))
	b.WriteString(detailSection("Memory", sample.Mem, hist.Mem(graphWidth*2), width, graphWidth))
	b.WriteString(detailSection("Disk /", sample.Disk, hist.Disk(graphWidth*2), width, graphWidth))

	b.WriteString(SectionTitle("Processes", fmt.Sprintf("%d", len(sample.Processes)), width))
	b.WriteString("\n")
	b.WriteString(ui.RenderProcessTable(sample.Processes, width))
	b.WriteString("\n\n")
	b.WriteString(m.renderDetailFooter())

	return detailContainerStyle.Render(b.String())
}

// renderDetailHeader renders host, state, uptime and load.
func (m Model) renderDetailHeader(host string, width int) string {
	sp := m.spinners[host]
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(host)
	line := sp.Indicator() + " " + title + "  " + MutedStyle.Render(string(sp.State))
	if target := m.targets[host]; target != "" {
		line += "  " + MutedStyle.Render(target)
	}

	if errMsg, ok := m.errors[host]; ok {
		line += "\n" + ErrorStyle.Render(truncate(firstLine(errMsg), width))
	}
	if s, ok := m.samples[host]; ok {
		info := ui.ShortUptime(s.Uptime)
		if load := ui.LoadAverage(s.Uptime); load != "" {
			info += "  load " + load
		}
		line += "\n" + LabelStyle.Render(info)
	}
	return line
}

// detailSection renders a titled bar plus history graph for one metric.
func detailSection(title string, value float64, history []float64, width, graphWidth int) string {
	var b strings.Builder
	b.WriteString(SectionTitle(title, ui.FormatPercent(value), width))
	b.WriteString("\n")
	b.WriteString(ProgressBar(width, value))
	b.WriteString("\n")
	if len(history) > 0 {
		b.WriteString(RenderGraph(history, graphWidth, detailGraphHeight))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderDetailFooter() string {
	return FooterStyle.Render("esc back | r reconnect | q quit | ? help")
}
