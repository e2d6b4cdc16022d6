package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/monitor"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// Process table column widths; the command column takes the rest.
const (
	procCPUWidth   = 6
	procMemWidth   = 6
	procStartWidth = 8
	procMinCmd     = 12
)

// NewTable creates a non-focused bubbles table sized to its rows.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selectable; render the cursor row like the others.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderTable renders a static table string.
func RenderTable(columns []TableColumn, rows [][]string) string {
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// ProcessColumns lays out the process table for a given total width.
func ProcessColumns(width int) []TableColumn {
	// Each bubbles column carries one cell of padding on both sides.
	cmd := width - procCPUWidth - procMemWidth - procStartWidth - 8
	if cmd < procMinCmd {
		cmd = procMinCmd
	}
	return []TableColumn{
		{Title: "CPU%", Width: procCPUWidth},
		{Title: "MEM%", Width: procMemWidth},
		{Title: "START", Width: procStartWidth},
		{Title: "COMMAND", Width: cmd},
	}
}

// ProcessRows converts process entries into table rows, heaviest first as
// delivered.
func ProcessRows(procs []monitor.ProcessEntry) []table.Row {
	rows := make([]table.Row, len(procs))
	for i, p := range procs {
		rows[i] = table.Row{p.CPU, p.Mem, p.Start, p.Command}
	}
	return rows
}

// RenderProcessTable renders the process list, or a muted placeholder when
// it is empty.
func RenderProcessTable(procs []monitor.ProcessEntry, width int) string {
	if len(procs) == 0 {
		return lipgloss.NewStyle().Foreground(ColorMuted).Render("no process data")
	}
	return NewTable(ProcessColumns(width), ProcessRows(procs)).View()
}

// HostRow is one line of 'rstat hosts'.
type HostRow struct {
	Name    string
	Target  string
	Source  string // "config" or "ssh_config"
	Default bool
}

// RenderHostsTable renders the host list with the default host marked.
func RenderHostsTable(rows []HostRow) string {
	if len(rows) == 0 {
		return "No hosts configured"
	}

	nameW, targetW := len("NAME"), len("TARGET")
	for _, r := range rows {
		nameW = max(nameW, len(r.Name)+2)
		targetW = max(targetW, len(r.Target))
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	defaultStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render(padRight("NAME", nameW)+"  "+padRight("TARGET", targetW)+"  SOURCE") + "\n")
	for _, r := range rows {
		name := padRight(r.Name, nameW)
		if r.Default {
			name = defaultStyle.Render(padRight(r.Name+" *", nameW))
		}
		b.WriteString(name + "  " + padRight(r.Target, targetW) + "  " + mutedStyle.Render(r.Source) + "\n")
	}
	return b.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
