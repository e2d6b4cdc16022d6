package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/ui"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/spf13/cobra"
)

// sshConfigHosts lists ~/.ssh/config aliases. Swapped in tests.
var sshConfigHosts = sshutil.ParseSSHConfig

var hostsNoSSHConfig bool

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List hosts from .rstat.yaml and ~/.ssh/config",
	Long: `List the hosts rstat knows about: named hosts from the config file, then
aliases from ~/.ssh/config. Any of them can be passed to watch or top.

Examples:
  rstat hosts
  rstat hosts --json
  rstat hosts add web deploy@web.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsCommand(cmd.OutOrStdout(), !hostsNoSSHConfig)
	},
}

var hostsAddFlags struct {
	user string
	port int
	key  string
}

var hostsAddCmd = &cobra.Command{
	Use:   "add <name> <[user@]host[:port]>",
	Short: "Add a host to the config file",
	Long: `Add a named host to the config file found by the usual search, keeping
the file's comments and layout.

Examples:
  rstat hosts add web deploy@web.example.com
  rstat hosts add db db.internal --port 2222 --key ~/.ssh/db_ed25519`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := config.Host{
			SSH:     args[1],
			User:    hostsAddFlags.user,
			Port:    hostsAddFlags.port,
			KeyPath: hostsAddFlags.key,
		}
		return hostsAddCommand(cmd.OutOrStdout(), args[0], host)
	},
}

func init() {
	hostsCmd.Flags().BoolVar(&hostsNoSSHConfig, "no-ssh-config", false, "don't list ~/.ssh/config aliases")
	hostsAddCmd.Flags().StringVarP(&hostsAddFlags.user, "user", "u", "", "SSH user")
	hostsAddCmd.Flags().IntVarP(&hostsAddFlags.port, "port", "p", 0, "SSH port")
	hostsAddCmd.Flags().StringVarP(&hostsAddFlags.key, "key", "i", "", "private key file")
	hostsCmd.AddCommand(hostsAddCmd)
	rootCmd.AddCommand(hostsCmd)
}

// hostEntry is one row of hosts --json.
type hostEntry struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Source  string `json:"source"`
	Default bool   `json:"default,omitempty"`
}

func hostsCommand(out io.Writer, includeSSHConfig bool) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	entries := configHostEntries(cfg)
	if includeSSHConfig {
		aliases, err := sshConfigHosts()
		if err != nil {
			log.Debug("reading ssh config: %v", err)
		}
		entries = append(entries, sshConfigEntries(aliases, cfg)...)
	}

	if machineMode {
		if entries == nil {
			entries = []hostEntry{}
		}
		return WriteJSONSuccess(out, entries)
	}

	rows := make([]ui.HostRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ui.HostRow{Name: e.Name, Target: e.Target, Source: e.Source, Default: e.Default})
	}
	table := ui.RenderHostsTable(rows)
	if !strings.HasSuffix(table, "\n") {
		table += "\n"
	}
	_, err = fmt.Fprint(out, table)
	return err
}

func configHostEntries(cfg *config.Config) []hostEntry {
	var entries []hostEntry
	for _, name := range config.HostNames(cfg.Hosts) {
		entries = append(entries, hostEntry{
			Name:    name,
			Target:  hostTarget(cfg.Hosts[name]),
			Source:  sourceConfig,
			Default: name == cfg.Default,
		})
	}
	return entries
}

// sshConfigEntries skips aliases shadowed by a config host.
func sshConfigEntries(aliases []sshutil.SSHHostEntry, cfg *config.Config) []hostEntry {
	var entries []hostEntry
	for _, a := range aliases {
		if _, shadowed := cfg.Lookup(a.Alias); shadowed {
			continue
		}
		entries = append(entries, hostEntry{
			Name:   a.Alias,
			Target: a.Description(),
			Source: sourceSSHConfig,
		})
	}
	return entries
}

func hostTarget(h config.Host) string {
	target := h.SSH
	if h.User != "" {
		target += " (user: " + h.User + ")"
	}
	if h.Port != 0 {
		target += " (port: " + strconv.Itoa(h.Port) + ")"
	}
	return target
}

func hostsAddCommand(out io.Writer, name string, host config.Host) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Couldn't find a config file to add the host to",
			"Run 'rstat init' to create one")
	}

	if err := config.AddHost(path, name, host); err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(out, map[string]string{"name": name, "ssh": host.SSH, "config": path})
	}
	_, err = fmt.Fprintf(out, "%s Added %s to %s\n", ui.SymbolSuccess, name, path)
	return err
}
