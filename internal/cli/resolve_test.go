package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHosts() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Hosts["web"] = config.Host{SSH: "deploy@web.example.com:2222", KeyPath: "/keys/web"}
	cfg.Hosts["db"] = config.Host{SSH: "db-alias", User: "postgres"}
	return cfg
}

func TestResolveHost(t *testing.T) {
	stubSSHLookup(t, map[string]sshutil.SSHHostEntry{
		"db-alias": {Hostname: "10.0.0.7", User: "admin", Port: "2200", IdentityFile: "/keys/db"},
		"bastion":  {Hostname: "bastion.example.com", User: "ops"},
		"web":      {Hostname: "shadowed.example.com"},
	})

	tests := []struct {
		name  string
		arg   string
		flags ConnectFlags
		want  resolvedHost
	}{
		{
			name: "config host",
			arg:  "web",
			want: resolvedHost{Name: "web", Spec: "deploy@web.example.com:2222", Config: remote.Config{KeyPath: "/keys/web"}, Source: sourceConfig},
		},
		{
			name: "config host in another case",
			arg:  "WEB",
			want: resolvedHost{Name: "web", Spec: "deploy@web.example.com:2222", Config: remote.Config{KeyPath: "/keys/web"}, Source: sourceConfig},
		},
		{
			name: "config host through ssh alias keeps its own user",
			arg:  "db",
			want: resolvedHost{Name: "db", Spec: "10.0.0.7", Config: remote.Config{User: "postgres", Port: 2200, KeyPath: "/keys/db"}, Source: sourceConfig},
		},
		{
			name: "ssh config alias",
			arg:  "bastion",
			want: resolvedHost{Name: "bastion", Spec: "bastion.example.com", Config: remote.Config{User: "ops"}, Source: sourceSSHConfig},
		},
		{
			name: "literal target",
			arg:  "root@10.1.1.1:22",
			want: resolvedHost{Name: "root@10.1.1.1:22", Spec: "root@10.1.1.1:22", Source: sourceDirect},
		},
		{
			name: "unknown bare name",
			arg:  "nowhere",
			want: resolvedHost{Name: "nowhere", Spec: "nowhere", Source: sourceDirect},
		},
		{
			name:  "flags win",
			arg:   "db",
			flags: ConnectFlags{User: "me", Port: 22, Key: "/keys/mine"},
			want:  resolvedHost{Name: "db", Spec: "10.0.0.7", Config: remote.Config{User: "me", Port: 22, KeyPath: "/keys/mine"}, Source: sourceConfig},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveHost(testHosts(), tt.arg, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHost_Empty(t *testing.T) {
	_, err := resolveHost(testHosts(), "  ", ConnectFlags{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestPickHostArg(t *testing.T) {
	cfg := testHosts()
	cfg.Default = "db"
	got, err := pickHostArg(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db", got)

	single := config.DefaultConfig()
	single.Hosts["only"] = config.Host{SSH: "only.example.com"}
	got, err = pickHostArg(single)
	require.NoError(t, err)
	assert.Equal(t, "only", got)

	_, err = pickHostArg(config.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No host given")
}

func TestRemoteOptions(t *testing.T) {
	setMachineMode(t, false)
	cfg := config.DefaultConfig()
	cfg.Poll.Interval = time.Second
	cfg.Poll.Top = 3
	cfg.Poll.ProbeFailure = "skip"
	cfg.Connection.Compress = false
	cfg.Connection.AgentSocket = "/tmp/agent.sock"

	opts, err := remoteOptions(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, time.Second, opts.Interval)
	assert.Equal(t, monitor.ScriptOptions{TopN: 3, Policy: monitor.PolicySkip}, opts.Script)
	assert.False(t, opts.Compress)
	assert.True(t, opts.AgentForward)
	assert.Equal(t, "/tmp/agent.sock", opts.AgentSocket)
	assert.Equal(t, cfg.Connection.ReadyTimeout, opts.ReadyTimeout)

	dialer, ok := opts.Dialer.(*sshutil.SSHDialer)
	require.True(t, ok)
	assert.True(t, dialer.StrictHostKeyChecking)

	opts, err = remoteOptions(cfg, true)
	require.NoError(t, err)
	assert.False(t, opts.Dialer.(*sshutil.SSHDialer).StrictHostKeyChecking)

	cfg.Poll.ProbeFailure = "retry"
	_, err = remoteOptions(cfg, false)
	assert.Error(t, err)
}

func TestNewRemote(t *testing.T) {
	stubSSHLookup(t, nil)

	r, rh, err := newRemote(testHosts(), "web", ConnectFlags{})
	require.NoError(t, err)
	assert.Equal(t, "web", rh.Name)
	assert.Equal(t, sshutil.Target{Host: "web.example.com", Port: 2222, User: "deploy"}, r.Target())
	assert.Equal(t, remote.StateDisconnected, r.State())
	assert.Equal(t, "web (deploy@web.example.com:2222)", describeHost(rh, r))

	r, rh, err = newRemote(testHosts(), "ops@10.0.0.9:2201", ConnectFlags{})
	require.NoError(t, err)
	assert.Equal(t, "ops@10.0.0.9:2201", describeHost(rh, r))
}
