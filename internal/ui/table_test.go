package ui

import (
	"strings"
	"testing"

	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessColumns(t *testing.T) {
	cols := ProcessColumns(80)
	require.Len(t, cols, 4)
	assert.Equal(t, []string{"CPU%", "MEM%", "START", "COMMAND"},
		[]string{cols[0].Title, cols[1].Title, cols[2].Title, cols[3].Title})
	assert.Equal(t, 80-6-6-8-8, cols[3].Width)

	narrow := ProcessColumns(10)
	assert.Equal(t, procMinCmd, narrow[3].Width)
}

func TestRenderProcessTable(t *testing.T) {
	procs := []monitor.ProcessEntry{
		{CPU: "0.3", Mem: "0.4", Start: "09:59", Command: "bash run.sh"},
		{CPU: "0.1", Mem: "0.2", Start: "10:00", Command: "sleep 5"},
	}

	out := RenderProcessTable(procs, 60)
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "bash run.sh")
	assert.Contains(t, out, "sleep 5")
	assert.Less(t, strings.Index(out, "bash run.sh"), strings.Index(out, "sleep 5"), "rows keep their order")
}

func TestRenderProcessTable_Empty(t *testing.T) {
	assert.Equal(t, "no process data", RenderProcessTable(nil, 60))
}

func TestProcessRows(t *testing.T) {
	rows := ProcessRows([]monitor.ProcessEntry{{CPU: "1", Mem: "2", Start: "3", Command: "x y"}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"1", "2", "3", "x y"}, []string(rows[0]))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]TableColumn{{Title: "A", Width: 5}, {Title: "B", Width: 5}}, [][]string{{"one", "two"}})
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
}

func TestRenderHostsTable(t *testing.T) {
	out := RenderHostsTable([]HostRow{
		{Name: "web", Target: "deploy@web:2222", Source: "config", Default: true},
		{Name: "lab", Target: "root@10.0.0.5:22", Source: "ssh_config"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, out, "web *")
	assert.Contains(t, out, "deploy@web:2222")
	assert.Contains(t, out, "ssh_config")
	assert.NotContains(t, out, "lab *")
}

func TestRenderHostsTable_Empty(t *testing.T) {
	assert.Equal(t, "No hosts configured", RenderHostsTable(nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "", padRight("", 0))
}
