package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/logger"
	"github.com/rileyhilliard/rstat/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags.
var (
	cfgFile   string
	debugMode bool
	noColor   bool
)

// log is the CLI logger, set up before each command runs.
var log logger.Logger = logger.Noop()

var rootCmd = &cobra.Command{
	Use:   "rstat",
	Short: "Watch CPU, memory, disk and processes on remote hosts over SSH",
	Long: `rstat opens one SSH connection per host and runs a small shell loop that
reports uptime, CPU, memory, root disk usage and the busiest processes every
few seconds. Nothing is installed on the remote side.

Examples:
  rstat watch web                 # One line per sample
  rstat top web db                # Live dashboard
  rstat watch deploy@10.0.0.5:2222 --interval 1s
  rstat script --top 5            # Show the remote command`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.ConfigureOutput(os.Stdout, noColor || machineMode)
		log = newLogger(cmd.ErrOrStderr(), debugEnabled())
		logger.SetDefault(log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .rstat.yaml, then ~/.config/rstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "print debug logs to stderr (or set "+logger.DebugEnv+")")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, renderError(err))
		}
		os.Exit(1)
	}
}

func debugEnabled() bool {
	return debugMode || os.Getenv(logger.DebugEnv) != ""
}

// newLogger logs to w when debugging. Otherwise commands report failures
// through their returned errors and stay quiet.
func newLogger(w io.Writer, debug bool) logger.Logger {
	if !debug {
		return logger.Noop()
	}
	return logger.NewWriterLogger(w, "[rstat] ", true)
}

// renderError formats err for the terminal. Structured errors already carry
// their own layout; anything else gets the same leading symbol.
func renderError(err error) string {
	var text string
	if _, ok := err.(*errors.Error); ok {
		text = err.Error()
	} else {
		text = fmt.Sprintf("%s %s\n", ui.SymbolFail, err.Error())
	}

	style := lipgloss.NewStyle().Foreground(ui.ColorError)
	first, rest, _ := strings.Cut(text, "\n")
	return style.Render(first) + "\n" + rest
}
