package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capture = "Last login: Mon Oct  5 09:00:00 2026\r\n" +
	"12:34 == 3.5% == 42 == 10% == \r\n" +
	"incomplete chunk with no delimiter\n" +
	"up == 1.0 == 2.0 == 3.0 == 0.1 0.2 10:00 sleep 5@0.3 0.4 09:59 bash run.sh@\n"

type parsedRecord struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Sample struct {
		Uptime    string   `json:"uptime"`
		CPU       *float64 `json:"cpu"`
		Processes []struct {
			CPU     string `json:"cpu"`
			Command string `json:"process"`
		} `json:"processes"`
	} `json:"sample"`
}

func decodeLines(t *testing.T, out string) []parsedRecord {
	t.Helper()
	var recs []parsedRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var rec parsedRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		recs = append(recs, rec)
	}
	return recs
}

func TestParseCommand(t *testing.T) {
	setMachineMode(t, false)

	var buf bytes.Buffer
	require.NoError(t, parseCommand(strings.NewReader(capture), &buf, false))

	recs := decodeLines(t, buf.String())
	require.Len(t, recs, 2)

	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, "12:34", recs[0].Sample.Uptime)
	require.NotNil(t, recs[0].Sample.CPU)
	assert.InDelta(t, 3.5, *recs[0].Sample.CPU, 0.001)
	assert.Empty(t, recs[0].Sample.Processes)
	assert.Empty(t, recs[0].Raw)

	assert.Equal(t, 4, recs[1].Line)
	require.Len(t, recs[1].Sample.Processes, 2)
	assert.Equal(t, "bash run.sh", recs[1].Sample.Processes[0].Command, "process rows come out reversed")
	assert.Equal(t, "sleep 5", recs[1].Sample.Processes[1].Command)
}

func TestParseCommand_Echo(t *testing.T) {
	setMachineMode(t, false)

	var buf bytes.Buffer
	require.NoError(t, parseCommand(strings.NewReader(capture), &buf, true))

	recs := decodeLines(t, buf.String())
	require.Len(t, recs, 2)
	assert.Equal(t, "12:34 == 3.5% == 42 == 10% == ", recs[0].Raw, "carriage return is dropped")
}

func TestParseCommand_JSONEnvelope(t *testing.T) {
	setMachineMode(t, true)

	var buf bytes.Buffer
	require.NoError(t, parseCommand(strings.NewReader(capture), &buf, false))

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Samples []parsedRecord `json:"samples"`
			Skipped int            `json:"skipped"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data.Samples, 2)
	assert.Equal(t, 2, env.Data.Skipped)
}

func TestParseCommand_EmptyInput(t *testing.T) {
	setMachineMode(t, false)
	var buf bytes.Buffer
	require.NoError(t, parseCommand(strings.NewReader(""), &buf, false))
	assert.Empty(t, buf.String())

	setMachineMode(t, true)
	buf.Reset()
	require.NoError(t, parseCommand(strings.NewReader(""), &buf, false))
	assert.Contains(t, buf.String(), `"samples": []`)
}
