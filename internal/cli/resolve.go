package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/keys"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/internal/ui"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
)

// Where a resolved host came from.
const (
	sourceConfig    = "config"
	sourceSSHConfig = "ssh_config"
	sourceDirect    = "direct"
)

// resolvedHost is a host argument after config and ssh_config lookup.
type resolvedHost struct {
	Name   string
	Spec   string
	Config remote.Config
	Source string
}

// sshLookup resolves an ~/.ssh/config alias. Swapped in tests.
var sshLookup = sshutil.LookupHost

// loadConfig finds and validates the config, applying poll flags on top.
func loadConfig(flags ConnectFlags) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Debug("loaded config from %s", path)
	}
	if err := flags.ApplyPoll(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveHost turns a host argument into a connection spec. Config hosts
// win over ssh_config aliases, and flags win over both.
func resolveHost(cfg *config.Config, arg string, flags ConnectFlags) (resolvedHost, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return resolvedHost{}, errors.New(errors.ErrConfig,
			"No host given",
			"Pass a host name, an ssh_config alias, or user@host")
	}

	rh := resolvedHost{Name: arg, Spec: arg, Source: sourceDirect}
	if h, ok := cfg.Lookup(arg); ok {
		rh.Name = config.NormalizeName(arg)
		rh.Spec = h.SSH
		rh.Config = h.RemoteConfig()
		rh.Source = sourceConfig
	}

	// Only a bare name can be an alias.
	if !strings.ContainsAny(rh.Spec, "@:") {
		if entry, ok := sshLookup(rh.Spec); ok {
			if entry.Hostname != "" {
				rh.Spec = entry.Hostname
			}
			if rh.Config.User == "" {
				rh.Config.User = entry.User
			}
			if rh.Config.Port == 0 {
				rh.Config.Port = entry.PortNumber()
			}
			if rh.Config.KeyPath == "" {
				rh.Config.KeyPath = entry.IdentityFile
			}
			if rh.Source == sourceDirect {
				rh.Source = sourceSSHConfig
			}
		}
	}

	if flags.User != "" {
		rh.Config.User = flags.User
	}
	if flags.Port != 0 {
		rh.Config.Port = flags.Port
	}
	if flags.Key != "" {
		rh.Config.KeyPath = flags.Key
	}
	return rh, nil
}

// pickHostArg returns the host to use when none was given on the command
// line: the config default, the only configured host, or a picker.
func pickHostArg(cfg *config.Config) (string, error) {
	if cfg.Default != "" {
		return cfg.Default, nil
	}
	names := config.HostNames(cfg.Hosts)
	if len(names) == 1 {
		return names[0], nil
	}
	if len(names) == 0 || machineMode || !ui.IsTerminal(os.Stdin) {
		return "", errors.New(errors.ErrConfig,
			"No host given",
			"Pass a host, e.g. 'rstat watch user@host', or set 'default' in .rstat.yaml")
	}

	infos := make([]ui.HostInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ui.HostInfo{Name: name, Target: cfg.Hosts[name].SSH, Source: sourceConfig})
	}
	picked, err := ui.PickHost(infos)
	if err != nil {
		return "", err
	}
	if picked == nil {
		return "", errors.New(errors.ErrConfig, "No host selected", "")
	}
	return picked.Name, nil
}

// remoteOptions builds connection options from the config.
func remoteOptions(cfg *config.Config, insecure bool) (remote.Options, error) {
	script, err := cfg.Poll.ScriptOptions()
	if err != nil {
		return remote.Options{}, err
	}

	dialer := sshutil.NewDialer()
	dialer.StrictHostKeyChecking = cfg.Connection.StrictHostKeyChecking && !insecure
	dialer.Logger = log
	if !dialer.StrictHostKeyChecking {
		log.Debug("host key checking is off")
	}

	return remote.Options{
		Dialer:       dialer,
		Resolver:     keys.NewFileResolver(),
		Logger:       log,
		ReadyTimeout: cfg.Connection.ReadyTimeout,
		Compress:     cfg.Connection.Compress,
		AgentForward: cfg.Connection.AgentForward,
		AgentSocket:  cfg.Connection.AgentSocket,
		Interval:     cfg.Poll.Interval,
		Script:       script,
	}, nil
}

// newRemote resolves arg and builds a disconnected Remote for it.
func newRemote(cfg *config.Config, arg string, flags ConnectFlags) (*remote.Remote, resolvedHost, error) {
	rh, err := resolveHost(cfg, arg, flags)
	if err != nil {
		return nil, rh, err
	}
	opts, err := remoteOptions(cfg, flags.Insecure)
	if err != nil {
		return nil, rh, err
	}
	r, err := remote.New(rh.Spec, rh.Config, opts)
	if err != nil {
		return nil, rh, err
	}
	log.Debug("%s resolved via %s to %s", rh.Name, rh.Source, r.Target())
	return r, rh, nil
}

func describeHost(rh resolvedHost, r *remote.Remote) string {
	target := r.Target().String()
	if rh.Name == target || rh.Name == rh.Spec {
		return target
	}
	return fmt.Sprintf("%s (%s)", rh.Name, target)
}
