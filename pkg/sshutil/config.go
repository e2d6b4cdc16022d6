package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// SSHHostEntry represents a parsed host entry from SSH config.
type SSHHostEntry struct {
	Alias        string // The Host pattern (alias)
	Hostname     string // The HostName value (actual host to connect to)
	User         string // The User value
	Port         string // The Port value
	IdentityFile string // The IdentityFile value
}

// Description returns a user-friendly description of the host.
func (h SSHHostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// PortNumber returns Port as an int, or 0 when unset or invalid.
func (h SSHHostEntry) PortNumber() int {
	p, err := strconv.Atoi(h.Port)
	if err != nil || p <= 0 || p > 65535 {
		return 0
	}
	return p
}

// DefaultConfigPath returns ~/.ssh/config.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// LookupHost resolves alias against ~/.ssh/config. ok is false when the
// file is missing or nothing in it applies to alias.
func LookupHost(alias string) (SSHHostEntry, bool) {
	return LookupHostFile(DefaultConfigPath(), alias)
}

// LookupHostFile resolves alias against the given config file.
func LookupHostFile(configPath, alias string) (SSHHostEntry, bool) {
	cfg, err := decodeConfig(configPath)
	if err != nil || cfg == nil {
		return SSHHostEntry{Alias: alias}, false
	}
	entry := lookup(cfg, alias)
	found := entry.Hostname != "" || entry.User != "" || entry.Port != "" || entry.IdentityFile != ""
	return entry, found
}

// ParseSSHConfig parses ~/.ssh/config and returns all host entries.
func ParseSSHConfig() ([]SSHHostEntry, error) {
	return ParseSSHConfigFile(DefaultConfigPath())
}

// ParseSSHConfigFile parses the specified SSH config file.
// Wildcard patterns are skipped; the result is sorted by alias.
func ParseSSHConfigFile(configPath string) ([]SSHHostEntry, error) {
	cfg, err := decodeConfig(configPath)
	if err != nil || cfg == nil {
		return nil, err
	}

	var hosts []SSHHostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?") || seen[alias] {
				continue
			}
			seen[alias] = true
			hosts = append(hosts, lookup(cfg, alias))
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})
	return hosts, nil
}

func lookup(cfg *ssh_config.Config, alias string) SSHHostEntry {
	entry := SSHHostEntry{Alias: alias}
	entry.Hostname, _ = cfg.Get(alias, "HostName")
	entry.User, _ = cfg.Get(alias, "User")
	entry.Port, _ = cfg.Get(alias, "Port")
	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		entry.IdentityFile = expandPath(identity)
	}
	return entry
}

// decodeConfig returns nil, nil when the file doesn't exist.
func decodeConfig(configPath string) (*ssh_config.Config, error) {
	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ssh_config.Decode(bytes.NewReader(content))
}

// preprocessSSHConfig reads the SSH config and returns content up to the
// first Match directive, which ssh_config can't decode. It also returns the
// 1-indexed line of that directive, or 0.
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}
