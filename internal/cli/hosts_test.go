package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSSHConfigHosts(t *testing.T, entries []sshutil.SSHHostEntry) {
	t.Helper()
	old := sshConfigHosts
	sshConfigHosts = func() ([]sshutil.SSHHostEntry, error) { return entries, nil }
	t.Cleanup(func() { sshConfigHosts = old })
}

func TestHostsCommand_Table(t *testing.T) {
	setMachineMode(t, false)
	useConfig(t, testConfig)
	stubSSHConfigHosts(t, []sshutil.SSHHostEntry{
		{Alias: "bastion", Hostname: "bastion.example.com", User: "ops"},
		{Alias: "web", Hostname: "shadowed.example.com"},
	})

	var buf bytes.Buffer
	require.NoError(t, hostsCommand(&buf, true))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "web *")
	assert.Contains(t, out, "deploy@web.example.com:2222")
	assert.Contains(t, out, "db-alias (user: postgres)")
	assert.Contains(t, out, "bastion.example.com, user: ops")
	assert.NotContains(t, out, "shadowed.example.com")
	assert.NotContains(t, out, "\n\n")
}

func TestHostsCommand_JSON(t *testing.T) {
	setMachineMode(t, true)
	useConfig(t, testConfig)
	stubSSHConfigHosts(t, []sshutil.SSHHostEntry{{Alias: "bastion", Hostname: "bastion.example.com"}})

	var buf bytes.Buffer
	require.NoError(t, hostsCommand(&buf, true))

	var env struct {
		Success bool        `json:"success"`
		Data    []hostEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, []hostEntry{
		{Name: "db", Target: "db-alias (user: postgres)", Source: sourceConfig},
		{Name: "web", Target: "deploy@web.example.com:2222", Source: sourceConfig, Default: true},
		{Name: "bastion", Target: "bastion.example.com", Source: sourceSSHConfig},
	}, env.Data)
}

func TestHostsCommand_NoSSHConfig(t *testing.T) {
	setMachineMode(t, true)
	useConfig(t, testConfig)
	stubSSHConfigHosts(t, []sshutil.SSHHostEntry{{Alias: "bastion"}})

	var buf bytes.Buffer
	require.NoError(t, hostsCommand(&buf, false))
	assert.NotContains(t, buf.String(), "bastion")
}

func TestHostsCommand_Empty(t *testing.T) {
	setMachineMode(t, false)
	noConfig(t)
	stubSSHConfigHosts(t, nil)

	var buf bytes.Buffer
	require.NoError(t, hostsCommand(&buf, true))
	assert.Equal(t, "No hosts configured\n", buf.String())

	setMachineMode(t, true)
	buf.Reset()
	require.NoError(t, hostsCommand(&buf, true))
	assert.Contains(t, buf.String(), `"data": []`)
}

func TestHostsAddCommand(t *testing.T) {
	setMachineMode(t, false)
	path := useConfig(t, testConfig)

	var buf bytes.Buffer
	require.NoError(t, hostsAddCommand(&buf, "cache", config.Host{SSH: "redis.internal", Port: 2200}))
	assert.Contains(t, buf.String(), "Added cache to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Host{SSH: "redis.internal", Port: 2200}, cfg.Hosts["cache"])
	assert.Len(t, cfg.Hosts, 3)

	err = hostsAddCommand(&buf, "cache", config.Host{SSH: "elsewhere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestHostsAddCommand_NoConfig(t *testing.T) {
	setMachineMode(t, false)
	dir := noConfig(t)

	err := hostsAddCommand(&bytes.Buffer{}, "web", config.Host{SSH: "web"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "rstat init")

	_, statErr := os.Stat(dir + "/" + config.ConfigFileName)
	assert.True(t, os.IsNotExist(statErr))
}
