package config

import (
	"strings"
	"time"

	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .rstat.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Default    string           `yaml:"default" mapstructure:"default"`
	Poll       PollConfig       `yaml:"poll" mapstructure:"poll"`
	Connection ConnectionConfig `yaml:"connection" mapstructure:"connection"`
	Hosts      map[string]Host  `yaml:"hosts" mapstructure:"hosts"`
}

// PollConfig controls the remote probe.
type PollConfig struct {
	// Interval between probe lines.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Top is how many processes the probe reports.
	Top int `yaml:"top" mapstructure:"top"`

	// ProbeFailure is "partial" or "skip".
	ProbeFailure string `yaml:"probe_failure" mapstructure:"probe_failure"`
}

// ConnectionConfig controls how SSH connections are made.
type ConnectionConfig struct {
	ReadyTimeout          time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"`
	Compress              bool          `yaml:"compress" mapstructure:"compress"`
	AgentForward          bool          `yaml:"agent_forward" mapstructure:"agent_forward"`
	StrictHostKeyChecking bool          `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`

	// AgentSocket overrides SSH_AUTH_SOCK.
	AgentSocket string `yaml:"agent_socket" mapstructure:"agent_socket"`
}

// Host is a named remote machine.
type Host struct {
	// SSH is [user@]host[:port] or an ~/.ssh/config alias.
	SSH     string `yaml:"ssh" mapstructure:"ssh"`
	User    string `yaml:"user,omitempty" mapstructure:"user"`
	Port    int    `yaml:"port,omitempty" mapstructure:"port"`
	KeyPath string `yaml:"key_path,omitempty" mapstructure:"key_path"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Poll: PollConfig{
			Interval:     monitor.DefaultInterval,
			Top:          monitor.DefaultTopN,
			ProbeFailure: string(monitor.PolicyPartial),
		},
		Connection: ConnectionConfig{
			ReadyTimeout:          remote.DefaultReadyTimeout,
			Compress:              true,
			AgentForward:          true,
			StrictHostKeyChecking: true,
		},
		Hosts: make(map[string]Host),
	}
}

// ScriptOptions converts the poll section for monitor.BuildCommand.
func (p PollConfig) ScriptOptions() (monitor.ScriptOptions, error) {
	policy, err := monitor.ParseFailurePolicy(p.ProbeFailure)
	if err != nil {
		return monitor.ScriptOptions{}, err
	}
	return monitor.ScriptOptions{TopN: p.Top, Policy: policy}, nil
}

// NormalizeName returns the form a host name takes in a loaded config. Viper
// lowercases map keys, so names match case-insensitively.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the named host, matching the name case-insensitively.
func (c *Config) Lookup(name string) (Host, bool) {
	if h, ok := c.Hosts[name]; ok {
		return h, true
	}
	h, ok := c.Hosts[NormalizeName(name)]
	return h, ok
}

// RemoteConfig converts a host entry for remote.New.
func (h Host) RemoteConfig() remote.Config {
	return remote.Config{
		User:    h.User,
		Port:    h.Port,
		KeyPath: h.KeyPath,
	}
}
