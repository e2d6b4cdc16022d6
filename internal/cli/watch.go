package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/internal/ui"
	"github.com/spf13/cobra"
)

// stopTimeout bounds how long a command waits for a connection to close.
const stopTimeout = 5 * time.Second

var watchFlags ConnectFlags

var watchCmd = &cobra.Command{
	Use:   "watch [host]",
	Short: "Print one line per sample from a remote host",
	Long: `Connect to a host and print a line each time the remote probe reports.

The host can be a name from .rstat.yaml, an alias from ~/.ssh/config, or
[user@]host[:port]. Without a host, the config's default host is used.

With --json, each sample is printed as one JSON object per line.
Stops on Ctrl+C or when the connection ends.

Examples:
  rstat watch web
  rstat watch deploy@10.0.0.5:2222 --interval 1s
  rstat watch web --json | jq .sample.cpu`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := ""
		if len(args) == 1 {
			host = args[0]
		}
		return watchCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), host, watchFlags)
	},
}

func init() {
	AddConnectFlags(watchCmd, &watchFlags)
	rootCmd.AddCommand(watchCmd)
}

// sampleRecord is one line of watch --json output.
type sampleRecord struct {
	Host    string         `json:"host"`
	Session string         `json:"session"`
	At      time.Time      `json:"at"`
	Sample  monitor.Sample `json:"sample"`
}

func watchCommand(ctx context.Context, out, errOut io.Writer, arg string, flags ConnectFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if arg == "" {
		if arg, err = pickHostArg(cfg); err != nil {
			return err
		}
	}

	r, rh, err := newRemote(cfg, arg, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchRemote(ctx, r, describeHost(rh, r), rh.Name, out, errOut)
}

// watchRemote starts r and prints samples until ctx is done or the
// connection ends.
func watchRemote(ctx context.Context, r *remote.Remote, label, name string, out, errOut io.Writer) error {
	var mu sync.Mutex
	enc := json.NewEncoder(out)
	clip := lipgloss.NewStyle()
	if width := terminalWidth(out); width > 0 {
		clip = clip.MaxWidth(width)
	}
	r.OnUpdate(func(u remote.Update) {
		s, ok := r.Sample()
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if machineMode {
			if err := enc.Encode(sampleRecord{Host: name, Session: u.Session, At: u.At, Sample: s}); err != nil {
				log.Debug("writing sample: %v", err)
			}
			return
		}
		fmt.Fprintln(out, clip.Render(ui.FormatSampleLine(name, u.At, s)))
	})

	spinnerOut := errOut
	if machineMode {
		spinnerOut = io.Discard
	}
	spinner := ui.NewSpinner(spinnerOut, "Connecting to "+label, isTerminalWriter(spinnerOut))
	spinner.Start()

	if err := r.Start(ctx); err != nil {
		stopRemote(r)
		if ctx.Err() != nil {
			spinner.Fail("Cancelled")
			return nil
		}
		spinner.Fail("Couldn't connect to " + label)
		return err
	}
	spinner.Success("Connected to " + label)

	done := r.Done()
	select {
	case <-ctx.Done():
		return stopRemote(r)
	case <-done:
		return errors.WrapWithCode(sessionHistory(r), errors.ErrSSH,
			fmt.Sprintf("Connection to %s ended", label),
			"Check that the host is still reachable, then run the command again")
	}
}

// sessionHistory describes the state changes of r's latest connection.
func sessionHistory(r *remote.Remote) error {
	history := r.Transitions()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].To == remote.StateConnecting {
			history = history[i:]
			break
		}
	}
	steps := make([]string, 0, len(history))
	for _, t := range history {
		steps = append(steps, fmt.Sprintf("%s %s", t.Timestamp.Format("15:04:05"), t.To))
	}
	return fmt.Errorf("session %s: %s", r.SessionID(), strings.Join(steps, " → "))
}

func stopRemote(r *remote.Remote) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return r.Stop(ctx)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}

// terminalWidth is the column count of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	if !isTerminalWriter(w) {
		return 0
	}
	return ui.TerminalWidth(w.(*os.File))
}
