package monitor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_EmptyProcesses(t *testing.T) {
	s, ok := ParseLine("12:34 == 3.5% == 42 == 10% == ")
	require.True(t, ok)

	assert.Equal(t, "12:34", s.Uptime)
	assert.Equal(t, 3.5, s.CPU)
	assert.Equal(t, 42.0, s.Mem)
	assert.Equal(t, 10.0, s.Disk)
	assert.NotNil(t, s.Processes)
	assert.Empty(t, s.Processes)
}

func TestParseLine_ProcessesReversed(t *testing.T) {
	line := "up 3 days == 12.25% == 55.1 == 71% == 0.1 0.2 10:00 sshd@5.0 1.0 09:00 node server.js@"

	s, ok := ParseLine(line)
	require.True(t, ok)

	require.Len(t, s.Processes, 2)
	assert.Equal(t, ProcessEntry{CPU: "5.0", Mem: "1.0", Start: "09:00", Command: "node server.js"}, s.Processes[0])
	assert.Equal(t, ProcessEntry{CPU: "0.1", Mem: "0.2", Start: "10:00", Command: "sshd"}, s.Processes[1])
}

func TestParseLine_NotASample(t *testing.T) {
	for _, line := range []string{"", "Last login: Mon Oct 12", "user@host:~$ ", "==", "a==b"} {
		t.Run(line, func(t *testing.T) {
			_, ok := ParseLine(line)
			assert.False(t, ok)
		})
	}
}

func TestParseLine_TrailingCRLF(t *testing.T) {
	s, ok := ParseLine("up == 1% == 2 == 3% == \r\n")
	require.True(t, ok)
	assert.Equal(t, 3.0, s.Disk)
	assert.Empty(t, s.Processes)
}

func TestParseLine_PartialFields(t *testing.T) {
	// A probe that failed under the partial policy leaves its field empty.
	s, ok := ParseLine("up ==  == 40 == 10% == ")
	require.True(t, ok)

	assert.True(t, math.IsNaN(s.CPU))
	assert.Equal(t, 40.0, s.Mem)
	assert.Equal(t, 10.0, s.Disk)
}

func TestParseLine_TruncatedLine(t *testing.T) {
	s, ok := ParseLine("up == 7%")
	require.True(t, ok)

	assert.Equal(t, "up", s.Uptime)
	assert.Equal(t, 7.0, s.CPU)
	assert.True(t, math.IsNaN(s.Mem))
	assert.True(t, math.IsNaN(s.Disk))
	assert.Empty(t, s.Processes)
}

func TestParseLine_SeparatorInsideCommand(t *testing.T) {
	s, ok := ParseLine("up == 1% == 2 == 3% == 0.5 0.1 08:00 sh -c a == b@")
	require.True(t, ok)

	require.Len(t, s.Processes, 1)
	assert.Equal(t, "sh -c a == b", s.Processes[0].Command)
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3.5%", 3.5},
		{"42", 42},
		{" 10% ", 10},
		{".5", 0.5},
		{"-1.25", -1.25},
		{"1e2%", 100},
		{"7.", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePercent(tt.in))
		})
	}

	for _, bad := range []string{"", "%", "abc", "N/A"} {
		assert.True(t, math.IsNaN(ParsePercent(bad)), "ParsePercent(%q)", bad)
	}
}

func TestParseProcesses(t *testing.T) {
	t.Run("blank records dropped", func(t *testing.T) {
		got := ParseProcesses("@ @1.0 2.0 10:00 a@@")
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Command)
	})

	t.Run("short row", func(t *testing.T) {
		got := ParseProcesses("1.0 2.0@")
		require.Len(t, got, 1)
		assert.Equal(t, ProcessEntry{CPU: "1.0", Mem: "2.0"}, got[0])
	})

	t.Run("command spacing kept", func(t *testing.T) {
		got := ParseProcesses("  1.0   2.0  Oct12   java  -Xmx1g   -jar app.jar  @")
		require.Len(t, got, 1)
		assert.Equal(t, "Oct12", got[0].Start)
		assert.Equal(t, "java  -Xmx1g   -jar app.jar", got[0].Command)
	})

	t.Run("empty block", func(t *testing.T) {
		got := ParseProcesses("")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFormatLine_RoundTrip(t *testing.T) {
	in := Sample{
		Uptime: "10:01:02 up 4 days",
		CPU:    12.5,
		Mem:    33.25,
		Disk:   71,
		Processes: []ProcessEntry{
			{CPU: "40.0", Mem: "3.1", Start: "09:12", Command: "postgres: writer"},
			{CPU: "2.0", Mem: "0.4", Start: "Oct01", Command: "sshd"},
		},
	}

	out, ok := ParseLine(FormatLine(in))
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestFormatLine_NaN(t *testing.T) {
	line := FormatLine(EmptySample())
	assert.Equal(t, " == % ==  == % == ", line)

	s, ok := ParseLine(line)
	require.True(t, ok)
	assert.True(t, math.IsNaN(s.CPU))
	assert.True(t, math.IsNaN(s.Mem))
	assert.True(t, math.IsNaN(s.Disk))
}

func TestFormatProcesses(t *testing.T) {
	entries := []ProcessEntry{
		{CPU: "1.0", Mem: "2.0", Start: "10:00", Command: "a"},
		{CPU: "3.0", Mem: "4.0", Start: "11:00", Command: "b c"},
	}
	assert.Equal(t, "1.0 2.0 10:00 a@3.0 4.0 11:00 b c@", FormatProcesses(entries))
	assert.Equal(t, "", FormatProcesses(nil))
}

func TestParseLine_HeaviestFirst(t *testing.T) {
	s, ok := ParseLine("up == 1.0 == 2.0 == 3.0 == 0.1 0.2 10:00 sleep 5@0.3 0.4 09:59 bash run.sh@")
	require.True(t, ok)

	require.Len(t, s.Processes, 2)
	assert.Equal(t, ProcessEntry{CPU: "0.3", Mem: "0.4", Start: "09:59", Command: "bash run.sh"}, s.Processes[0])
	assert.Equal(t, "sleep 5", s.Processes[1].Command)

	_, ok = ParseLine("incomplete chunk with no delimiter")
	assert.False(t, ok)
}
