package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NonInteractive(t *testing.T) {
	setMachineMode(t, false)
	dir := noConfig(t)

	var buf bytes.Buffer
	err := Init(context.Background(), &buf, InitOptions{
		Name:           "web",
		SSH:            "deploy@web.example.com",
		Port:           2222,
		KeyPath:        "~/.ssh/deploy_ed25519",
		NonInteractive: true,
		SkipTest:       true,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created .rstat.yaml")
	assert.Contains(t, buf.String(), "rstat watch web")

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.Default)
	assert.Equal(t, config.Host{SSH: "deploy@web.example.com", Port: 2222, KeyPath: "~/.ssh/deploy_ed25519"}, cfg.Hosts["web"])
	assert.Equal(t, config.DefaultConfig().Poll, cfg.Poll)
	require.NoError(t, config.Validate(cfg))
}

func TestInit_DefaultName(t *testing.T) {
	setMachineMode(t, false)
	dir := noConfig(t)

	require.NoError(t, Init(context.Background(), &bytes.Buffer{}, InitOptions{
		SSH:            "web.example.com",
		NonInteractive: true,
		SkipTest:       true,
	}))

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Default)
	assert.Contains(t, cfg.Hosts, "default")
}

func TestInit_Global(t *testing.T) {
	setMachineMode(t, true)
	dir := noConfig(t)

	var buf bytes.Buffer
	require.NoError(t, Init(context.Background(), &buf, InitOptions{
		SSH:            "web.example.com",
		Global:         true,
		NonInteractive: true,
		SkipTest:       true,
	}))

	want := config.GlobalPath(dir)
	_, err := os.Stat(want)
	require.NoError(t, err)

	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, want, env.Data["config"])
}

func TestInit_RefusesExisting(t *testing.T) {
	setMachineMode(t, false)
	dir := noConfig(t)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	opts := InitOptions{SSH: "web.example.com", NonInteractive: true, SkipTest: true}
	err := Init(context.Background(), &bytes.Buffer{}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data))

	opts.Overwrite = true
	require.NoError(t, Init(context.Background(), &bytes.Buffer{}, opts))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Default)
}

func TestInit_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts InitOptions
		want string
	}{
		{"missing ssh", InitOptions{NonInteractive: true, SkipTest: true}, "SSH host is required"},
		{"bad name", InitOptions{Name: "my host", SSH: "web", NonInteractive: true, SkipTest: true}, "Invalid host name"},
		{"bad port", InitOptions{SSH: "web", Port: 70000, NonInteractive: true, SkipTest: true}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMachineMode(t, false)
			dir := noConfig(t)

			err := Init(context.Background(), &bytes.Buffer{}, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.want)

			_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
			assert.True(t, os.IsNotExist(statErr), "nothing written on error")
		})
	}
}
