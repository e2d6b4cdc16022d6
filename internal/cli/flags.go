package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/spf13/cobra"
)

// ConnectFlags holds the flags shared by commands that open connections.
type ConnectFlags struct {
	User         string
	Port         int
	Key          string
	Interval     string
	Top          int
	ProbeFailure string
	Insecure     bool
}

// AddConnectFlags registers the connection flags on a command.
func AddConnectFlags(cmd *cobra.Command, flags *ConnectFlags) {
	cmd.Flags().StringVarP(&flags.User, "user", "u", "", "SSH user when the host doesn't name one")
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "SSH port when the host doesn't name one")
	cmd.Flags().StringVarP(&flags.Key, "key", "i", "", "private key file (default: first of ~/.ssh/id_*)")
	AddPollFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.Insecure, "insecure", false, "skip host key verification against known_hosts")
}

// AddPollFlags registers the flags that shape the remote script.
func AddPollFlags(cmd *cobra.Command, flags *ConnectFlags) {
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "time between samples (e.g., 1s, 2.5s)")
	cmd.Flags().IntVar(&flags.Top, "top", 0, "number of processes to report")
	cmd.Flags().StringVar(&flags.ProbeFailure, "probe-failure", "", "what to do when a probe fails: partial or skip")
}

// ParseInterval parses an interval flag. Returns zero when the flag is empty.
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 2.5s, or 500ms.")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval must be positive, got %s", flag),
			"Try something like 1s or 2.5s.")
	}
	return d, nil
}

// ApplyPoll overrides cfg's poll section with any flags that were set.
func (f ConnectFlags) ApplyPoll(cfg *config.Config) error {
	interval, err := ParseInterval(f.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Poll.Interval = interval
	}
	if f.Top != 0 {
		cfg.Poll.Top = f.Top
	}
	if f.ProbeFailure != "" {
		cfg.Poll.ProbeFailure = f.ProbeFailure
	}
	return nil
}
