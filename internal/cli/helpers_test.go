package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// syncBuffer guards a bytes.Buffer written from handler goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setMachineMode(t *testing.T, on bool) {
	t.Helper()
	old := machineMode
	machineMode = on
	t.Cleanup(func() { machineMode = old })
}

// useConfig writes content to a temp config file and points --config at it.
func useConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".rstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	old := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = old })
	return path
}

// noConfig isolates a test from any config on the machine.
func noConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	old := cfgFile
	cfgFile = ""
	t.Cleanup(func() { cfgFile = old })
	return dir
}

func stubSSHLookup(t *testing.T, entries map[string]sshutil.SSHHostEntry) {
	t.Helper()
	old := sshLookup
	sshLookup = func(alias string) (sshutil.SSHHostEntry, bool) {
		e, ok := entries[alias]
		if !ok {
			return sshutil.SSHHostEntry{Alias: alias}, false
		}
		e.Alias = alias
		return e, true
	}
	t.Cleanup(func() { sshLookup = old })
}

const testConfig = `version: 1
default: web
poll:
  interval: 1s
  top: 5
hosts:
  web:
    ssh: deploy@web.example.com:2222
    key_path: /keys/web
  db:
    ssh: db-alias
    user: postgres
`
