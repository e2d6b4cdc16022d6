package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/monitor"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config version %d is newer than this rstat supports (%d)", cfg.Version, CurrentConfigVersion),
			"Upgrade rstat or lower 'version' in the config")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return err
	}

	if cfg.Connection.ReadyTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"connection.ready_timeout must be positive",
			"Use a duration such as 30s")
	}

	for _, name := range HostNames(cfg.Hosts) {
		if err := validateHost(name, cfg.Hosts[name]); err != nil {
			return err
		}
	}

	if cfg.Default != "" {
		if _, ok := cfg.Lookup(cfg.Default); !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Default host '%s' isn't defined", cfg.Default),
				fmt.Sprintf("Add it under 'hosts', or pick one of: %s", strings.Join(HostNames(cfg.Hosts), ", ")))
		}
	}

	return nil
}

func validatePoll(p PollConfig) error {
	if p.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			"poll.interval must be positive",
			"Use a duration such as 2.5s")
	}
	if p.Top <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("poll.top must be at least 1, got %d", p.Top),
			fmt.Sprintf("The default is %d", monitor.DefaultTopN))
	}
	if _, err := monitor.ParseFailurePolicy(p.ProbeFailure); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid poll.probe_failure",
			"Use 'partial' or 'skip'")
	}
	return nil
}

func validateHost(name string, host Host) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid host name '%s'", name),
			"Host names can't be empty or contain spaces")
	}
	if strings.TrimSpace(host.SSH) == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Host '%s' has no 'ssh' value", name),
			"Set ssh to [user@]host[:port] or an ~/.ssh/config alias")
	}
	if host.Port < 0 || host.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Host '%s' has port %d, which is out of range", name, host.Port),
			"Use a port between 1 and 65535, or leave it unset")
	}
	return nil
}

// HostNames returns the host names sorted.
func HostNames(hosts map[string]Host) []string {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
