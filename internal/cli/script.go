package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/internal/util"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/spf13/cobra"
)

var (
	scriptFlags ConnectFlags
	scriptSSH   string
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the polling command run on remote hosts",
	Long: `Print the shell loop rstat runs over SSH. Useful for checking what a
host will execute, or for running it by hand:

  ssh -t web "$(rstat script)"

With --ssh, the full ssh command line for that host is printed instead.

Examples:
  rstat script
  rstat script --interval 1s --top 5 --probe-failure skip
  rstat script --ssh web`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scriptCommand(cmd.OutOrStdout(), scriptSSH, scriptFlags)
	},
}

func init() {
	AddPollFlags(scriptCmd, &scriptFlags)
	scriptCmd.Flags().StringVar(&scriptSSH, "ssh", "", "print a complete ssh command for this host")
	rootCmd.AddCommand(scriptCmd)
}

// scriptOutput is the --json form of script.
type scriptOutput struct {
	Command  string   `json:"command"`
	SSH      string   `json:"ssh,omitempty"`
	Interval string   `json:"interval"`
	Top      int      `json:"top"`
	Policy   string   `json:"probe_failure"`
	Probes   []string `json:"probes"`
}

func scriptCommand(out io.Writer, host string, flags ConnectFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	opts, err := cfg.Poll.ScriptOptions()
	if err != nil {
		return err
	}

	command := monitor.BuildCommand(cfg.Poll.Interval, opts)
	sshLine := ""
	if host != "" {
		if sshLine, err = sshCommandLine(cfg, host, command); err != nil {
			return err
		}
	}

	if !machineMode {
		line := command
		if sshLine != "" {
			line = sshLine
		}
		_, err := fmt.Fprintln(out, line)
		return err
	}

	var names []string
	for _, p := range monitor.Probes(opts.TopN) {
		names = append(names, p.Name)
	}
	return WriteJSONSuccess(out, scriptOutput{
		Command:  command,
		SSH:      sshLine,
		Interval: cfg.Poll.Interval.String(),
		Top:      cfg.Poll.Top,
		Policy:   string(opts.Policy),
		Probes:   names,
	})
}

// sshCommandLine renders an ssh invocation that runs command on host with
// a pty, the way the remote loop is started.
func sshCommandLine(cfg *config.Config, host, command string) (string, error) {
	rh, err := resolveHost(cfg, host, ConnectFlags{})
	if err != nil {
		return "", err
	}
	target, err := remote.ParseTarget(rh.Spec, rh.Config)
	if err != nil {
		return "", err
	}

	args := []string{"ssh", "-t"}
	if target.Port != 0 && target.Port != sshutil.DefaultPort {
		args = append(args, "-p", strconv.Itoa(target.Port))
	}
	if rh.Config.KeyPath != "" {
		args = append(args, "-i", rh.Config.KeyPath)
	}
	host = target.Host
	if target.User != "" {
		host = target.User + "@" + host
	}
	args = append(args, host, command)
	return util.ShellJoin(args...), nil
}
