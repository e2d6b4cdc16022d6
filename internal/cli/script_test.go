package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptCommand_Defaults(t *testing.T) {
	setMachineMode(t, false)
	noConfig(t)

	var buf bytes.Buffer
	require.NoError(t, scriptCommand(&buf, "", ConnectFlags{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "while sleep 2.5; do "))
	assert.True(t, strings.HasSuffix(out, "; done\n"))
	assert.Contains(t, out, "tail -15 |")
}

func TestScriptCommand_ConfigAndFlags(t *testing.T) {
	setMachineMode(t, false)
	useConfig(t, testConfig)

	var buf bytes.Buffer
	require.NoError(t, scriptCommand(&buf, "", ConnectFlags{}))
	assert.True(t, strings.HasPrefix(buf.String(), "while sleep 1; do "))
	assert.Contains(t, buf.String(), "tail -5 |")

	buf.Reset()
	require.NoError(t, scriptCommand(&buf, "", ConnectFlags{Interval: "250ms", Top: 2, ProbeFailure: "skip"}))
	assert.True(t, strings.HasPrefix(buf.String(), "while sleep 0.25; do "))
	assert.Contains(t, buf.String(), "tail -2 |")
	assert.Contains(t, buf.String(), ") && echo ")
}

func TestScriptCommand_JSON(t *testing.T) {
	setMachineMode(t, true)
	noConfig(t)

	var buf bytes.Buffer
	require.NoError(t, scriptCommand(&buf, "", ConnectFlags{Top: 3}))

	var env struct {
		Success bool         `json:"success"`
		Data    scriptOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "2.5s", env.Data.Interval)
	assert.Equal(t, 3, env.Data.Top)
	assert.Equal(t, "partial", env.Data.Policy)
	assert.Equal(t, []string{"uptime", "cpu", "ram", "disk", "processes"}, env.Data.Probes)
	assert.Contains(t, env.Data.Command, "while sleep 2.5; do ")
}

func TestScriptCommand_InvalidTop(t *testing.T) {
	setMachineMode(t, false)
	noConfig(t)

	err := scriptCommand(&bytes.Buffer{}, "", ConnectFlags{Top: -1})
	assert.Error(t, err)
}

func TestScriptCommand_SSH(t *testing.T) {
	setMachineMode(t, false)
	useConfig(t, testConfig)
	stubSSHLookup(t, nil)

	var buf bytes.Buffer
	require.NoError(t, scriptCommand(&buf, "web", ConnectFlags{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "ssh -t -p 2222 -i /keys/web deploy@web.example.com 'while sleep 1; do "), out)
	assert.True(t, strings.HasSuffix(out, "; done'\n"))

	buf.Reset()
	require.NoError(t, scriptCommand(&buf, "ops@10.0.0.9", ConnectFlags{}))
	assert.True(t, strings.HasPrefix(buf.String(), "ssh -t ops@10.0.0.9 'while sleep 1; do "), buf.String())
}
