package cli

import (
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rstat/internal/config"
	"github.com/rileyhilliard/rstat/internal/dashboard"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/logger"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/spf13/cobra"
)

// debugLogFile receives logs while the dashboard owns the terminal.
const debugLogFile = "rstat-debug.log"

var (
	topFlags   ConnectFlags
	topHistory int
)

var topCmd = &cobra.Command{
	Use:   "top [host...]",
	Short: "Live dashboard for one or more remote hosts",
	Long: `Open a full-screen dashboard showing CPU, memory and disk usage with
history graphs, plus the busiest processes, for each host.

Without hosts, every host in .rstat.yaml is shown.

Keyboard shortcuts:
  q/Ctrl+C  Quit
  r         Reconnect the selected host
  s         Cycle sort order (name, cpu, mem, disk)
  ↑/k ↓/j   Select host
  Enter     Expand selected host
  Esc       Back to list
  ?         Toggle help

Examples:
  rstat top
  rstat top web db
  rstat top web --interval 1s --top 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return topCommand(cmd.Context(), args, topFlags)
	},
}

func init() {
	AddConnectFlags(topCmd, &topFlags)
	topCmd.Flags().IntVar(&topHistory, "history", monitor.DefaultHistorySize, "samples kept per host for graphs")
	rootCmd.AddCommand(topCmd)
}

func topCommand(ctx context.Context, args []string, flags ConnectFlags) error {
	if machineMode {
		return errors.New(errors.ErrConfig,
			"top is interactive and has no JSON output",
			"Use 'rstat watch <host> --json' instead")
	}
	if !isTerminalWriter(os.Stdout) {
		return errors.New(errors.ErrConfig,
			"top needs a terminal",
			"Use 'rstat watch <host>' when piping output")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// The dashboard owns the screen, so logs go to a file or nowhere.
	log = logger.Noop()
	if debugEnabled() {
		f, err := tea.LogToFile(debugLogFile, "rstat")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open "+debugLogFile,
				"Check that the current directory is writable")
		}
		defer f.Close()
		log = logger.NewWriterLogger(f, "[rstat] ", true)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = config.HostNames(cfg.Hosts)
	}
	if len(args) == 0 {
		return errors.New(errors.ErrConfig,
			"No hosts to monitor",
			"Pass hosts, e.g. 'rstat top web db', or add some with 'rstat hosts add'")
	}

	remotes := make(map[string]*remote.Remote, len(args))
	hosts := make([]dashboard.Host, 0, len(args))
	for _, arg := range args {
		r, rh, err := newRemote(cfg, arg, flags)
		if err != nil {
			return err
		}
		if _, dup := remotes[rh.Name]; dup {
			continue
		}
		remotes[rh.Name] = r
		hosts = append(hosts, dashboard.Host{Name: rh.Name, Target: r.Target().String()})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := dashboard.NewModel(hosts, dashboard.Options{
		Connect:     connectCmd(ctx, remotes),
		HistorySize: topHistory,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	forwardUpdates(p, remotes)

	_, runErr := p.Run()
	cancel()
	stopAll(remotes)

	if runErr != nil {
		return errors.WrapWithCode(runErr, errors.ErrExec,
			"Dashboard exited unexpectedly",
			"Try resizing your terminal or running 'rstat watch' instead")
	}
	return nil
}

// connectCmd returns the dashboard's connect hook. The command blocks in
// a bubbletea goroutine until the host is polling or has failed.
func connectCmd(ctx context.Context, remotes map[string]*remote.Remote) func(string) tea.Cmd {
	return func(host string) tea.Cmd {
		r, ok := remotes[host]
		if !ok {
			return nil
		}
		return func() tea.Msg {
			if err := r.Start(ctx); err != nil {
				stopRemote(r)
				if ctx.Err() != nil {
					return nil
				}
				return dashboard.ErrorMsg{Host: host, Err: err}
			}
			return nil
		}
	}
}

// forwardUpdates sends remote callbacks into the program. Send blocks
// until the program reads the message, and returns once it has exited.
func forwardUpdates(p *tea.Program, remotes map[string]*remote.Remote) {
	for name, r := range remotes {
		r.OnUpdate(func(u remote.Update) {
			if s, ok := r.Sample(); ok {
				p.Send(dashboard.SampleMsg{Host: name, Sample: s, At: u.At})
			}
		})
		r.OnStateChange(func(from, to remote.State) {
			p.Send(dashboard.StateMsg{Host: name, State: to})
		})
	}
}

func stopAll(remotes map[string]*remote.Remote) {
	var wg sync.WaitGroup
	for name, r := range remotes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stopRemote(r); err != nil {
				log.Debug("stopping %s: %v", name, err)
			}
		}()
	}
	wg.Wait()
}
