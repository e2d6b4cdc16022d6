package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/keys"
	"github.com/rileyhilliard/rstat/internal/ui"
	"github.com/spf13/cobra"
)

// initTestTimeout bounds the connection test run before saving.
const initTestTimeout = 10 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	Name           string // Host name in the config
	SSH            string // [user@]host[:port] or ssh_config alias
	User           string
	Port           int
	KeyPath        string
	Global         bool // Write ~/.config/rstat/config.yaml instead of ./.rstat.yaml
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts
	SkipTest       bool // Don't test the connection before saving
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .rstat.yaml config file",
	Long: `Create a config file with one host and the default poll settings.

Prompts for the host unless --non-interactive is given. The connection is
tested before the file is written; use --skip-test to save without it.

Examples:
  rstat init
  rstat init --non-interactive --ssh deploy@web.example.com --name web
  rstat init --global --non-interactive --ssh web --skip-test`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if machineMode {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Name, "name", "", "host name in the config (default: \"default\")")
	initCmd.Flags().StringVar(&initOpts.SSH, "ssh", "", "SSH host, user@host[:port], or ~/.ssh/config alias")
	initCmd.Flags().StringVarP(&initOpts.User, "user", "u", "", "SSH user")
	initCmd.Flags().IntVarP(&initOpts.Port, "port", "p", 0, "SSH port")
	initCmd.Flags().StringVarP(&initOpts.KeyPath, "key", "i", "", "private key file")
	initCmd.Flags().BoolVar(&initOpts.Global, "global", false, "write the global config in ~/.config/rstat")
	initCmd.Flags().BoolVar(&initOpts.Overwrite, "force", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; take values from flags")
	initCmd.Flags().BoolVar(&initOpts.SkipTest, "skip-test", false, "don't test the connection before saving")
	rootCmd.AddCommand(initCmd)
}

// initPath returns where init writes the config.
func initPath(global bool) (string, error) {
	if !global {
		return filepath.Join(".", config.ConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't find your home directory",
			"Set HOME, or run without --global")
	}
	return config.GlobalPath(home), nil
}

// Init creates a new config file.
func Init(ctx context.Context, out io.Writer, opts InitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := initPath(opts.Global)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if opts.NonInteractive {
		if strings.TrimSpace(opts.SSH) == "" {
			return errors.New(errors.ErrConfig,
				"SSH host is required in non-interactive mode",
				"Provide --ssh or run interactively")
		}
		if opts.Name == "" {
			opts.Name = "default"
		}
	} else if err := promptInit(&opts); err != nil {
		return err
	}

	opts.Name = config.NormalizeName(opts.Name)
	cfg := config.DefaultConfig()
	cfg.Hosts[opts.Name] = config.Host{
		SSH:     strings.TrimSpace(opts.SSH),
		User:    opts.User,
		Port:    opts.Port,
		KeyPath: opts.KeyPath,
	}
	cfg.Default = opts.Name
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !opts.SkipTest {
		if err := testConnection(ctx, out, cfg, opts); err != nil {
			return err
		}
	}

	if err := config.Write(path, cfg, true); err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(out, map[string]string{"config": path, "host": opts.Name})
	}
	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  rstat watch %s  - Print samples as they arrive\n", opts.Name)
	fmt.Fprintln(out, "  rstat top        - Live dashboard")
	fmt.Fprintln(out, "  rstat hosts add  - Add more hosts")
	return nil
}

// promptInit fills opts from a form, keeping any values given as flags.
func promptInit(opts *InitOptions) error {
	if opts.Name == "" {
		opts.Name = "default"
	}

	keyDescription := "Leave empty to use your SSH agent and default keys"
	if found := keys.NewFileResolver().Find(); len(found) > 0 {
		keyDescription = fmt.Sprintf("Leave empty to use your SSH agent and default keys (found %s)", found[0].Path)
	}
	port := ""
	if opts.Port != 0 {
		port = strconv.Itoa(opts.Port)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH host or alias").
				Description("Enter hostname, user@host, or SSH config alias").
				Placeholder("myserver or user@192.168.1.100").
				Value(&opts.SSH).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SSH host is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Host name").
				Description("A friendly name for this host in your config").
				Placeholder("web").
				Value(&opts.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("host name is required")
					}
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("host name cannot contain whitespace")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SSH port (optional)").
				Placeholder("22").
				Value(&port).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if p, err := strconv.Atoi(s); err != nil || p < 1 || p > 65535 {
						return fmt.Errorf("port must be a number between 1 and 65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Private key (optional)").
				Description(keyDescription).
				Placeholder("~/.ssh/id_ed25519").
				Value(&opts.KeyPath),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	opts.Name = strings.TrimSpace(opts.Name)
	if port != "" {
		opts.Port, _ = strconv.Atoi(port)
	}
	return nil
}

// testConnection connects once and disconnects. Interactive runs may
// save anyway after a failure.
func testConnection(ctx context.Context, out io.Writer, cfg *config.Config, opts InitOptions) error {
	r, rh, err := newRemote(cfg, opts.Name, ConnectFlags{})
	if err != nil {
		return err
	}
	label := describeHost(rh, r)

	spinnerOut := out
	if machineMode {
		spinnerOut = io.Discard
	}
	spinner := ui.NewSpinner(spinnerOut, "Testing connection to "+label, isTerminalWriter(spinnerOut))
	spinner.Start()

	ctx, cancel := context.WithTimeout(ctx, initTestTimeout)
	defer cancel()
	connErr := r.Connect(ctx)
	stopRemote(r)

	if connErr == nil {
		spinner.Success("Connected to " + label)
		return nil
	}
	spinner.Fail("Couldn't connect to " + label)

	if opts.NonInteractive {
		return connErr
	}

	fmt.Fprintf(out, "\n%s", renderError(connErr))
	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can fix the connection later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return connErr
	}
	return nil
}
