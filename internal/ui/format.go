package ui

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/monitor"
)

var (
	userCountPattern = regexp.MustCompile(`,\s*\d+\s+users?\b`)
	loadPattern      = regexp.MustCompile(`load averages?:\s*(.*)$`)
)

// FormatPercent renders v with one decimal, or "--" for NaN.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return SymbolMissing
	}
	return fmt.Sprintf("%.1f%%", v)
}

// ShortUptime reduces uptime(1) output to the "up ..." part:
//
//	" 12:04:11 up 3 days,  2:01,  1 user,  load average: 0.00" -> "up 3 days, 2:01"
//
// Anything it doesn't recognise comes back trimmed.
func ShortUptime(raw string) string {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "up ")
	if idx < 0 {
		return raw
	}
	up := raw[idx:]
	if loc := userCountPattern.FindStringIndex(up); loc != nil {
		up = up[:loc[0]]
	} else if i := strings.Index(up, "load average"); i >= 0 {
		up = up[:i]
	}
	up = strings.TrimRight(up, ", ")
	return strings.Join(strings.Fields(up), " ")
}

// LoadAverage extracts the load average triple from uptime(1) output, or "".
func LoadAverage(raw string) string {
	m := loadPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FormatSampleLine renders one sample as a single watch line.
func FormatSampleLine(host string, at time.Time, s monitor.Sample) string {
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	hostStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)

	parts := []string{
		muted.Render(at.Format("15:04:05")),
		hostStyle.Render(host),
	}
	if up := ShortUptime(s.Uptime); up != "" {
		parts = append(parts, up)
	}
	parts = append(parts,
		metric("cpu", s.CPU),
		metric("mem", s.Mem),
		metric("disk", s.Disk),
	)
	if len(s.Processes) > 0 {
		p := s.Processes[0]
		parts = append(parts, muted.Render(truncate(commandName(p.Command), 24)+" "+p.CPU+"%"))
	}
	return strings.Join(parts, "  ")
}

func metric(label string, v float64) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(label) + " " + PercentStyle(v).Render(FormatPercent(v))
}

// commandName returns the executable of a command line without its path.
func commandName(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	if i := strings.LastIndex(name, "/"); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
