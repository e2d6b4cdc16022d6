package config

import (
	"testing"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"valid host", func(c *Config) {
			c.Hosts["web"] = Host{SSH: "web", Port: 2222}
			c.Default = "web"
		}, ""},
		{"future version", func(c *Config) { c.Version = 99 }, "newer"},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"zero top", func(c *Config) { c.Poll.Top = 0 }, "poll.top"},
		{"bad policy", func(c *Config) { c.Poll.ProbeFailure = "retry" }, "probe_failure"},
		{"zero timeout", func(c *Config) { c.Connection.ReadyTimeout = 0 }, "ready_timeout"},
		{"host without ssh", func(c *Config) { c.Hosts["web"] = Host{} }, "no 'ssh'"},
		{"host bad port", func(c *Config) { c.Hosts["web"] = Host{SSH: "web", Port: 70000} }, "out of range"},
		{"host name with space", func(c *Config) { c.Hosts["my web"] = Host{SSH: "web"} }, "Invalid host name"},
		{"unknown default", func(c *Config) { c.Default = "nope" }, "Default host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHostNames(t *testing.T) {
	names := HostNames(map[string]Host{"zeta": {}, "alpha": {}, "mid": {}})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	assert.Empty(t, HostNames(nil))
}
