package dashboard

import (
	"math"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/rileyhilliard/rstat/internal/remote"
	"github.com/rileyhilliard/rstat/internal/ui"
)

// SampleMsg carries a new sample for a host.
type SampleMsg struct {
	Host   string
	Sample monitor.Sample
	At     time.Time
}

// StateMsg reports a host's connection state change.
type StateMsg struct {
	Host  string
	State remote.State
}

// ErrorMsg reports a failed connect or poll. A nil Err clears the error.
type ErrorMsg struct {
	Host string
	Err  error
}

// clockMsg refreshes the "last update" ages in the header.
type clockMsg time.Time

const clockInterval = time.Second

// Host is one dashboard entry.
type Host struct {
	Name   string
	Target string
}

// Options configures a Model.
type Options struct {
	// Connect returns a command that starts the named host. It runs once
	// per host from Init and again when the user asks to reconnect.
	Connect func(host string) tea.Cmd

	// HistorySize bounds the per-host sample history.
	HistorySize int
}

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	hosts   []string // display order
	order   []string // order given to NewModel
	targets map[string]string

	samples  map[string]monitor.Sample
	updated  map[string]time.Time
	history  map[string]*monitor.History
	spinners map[string]ui.HostSpinner
	errors   map[string]string

	connect   func(string) tea.Cmd
	selected  int
	sortOrder SortOrder
	viewMode  ViewMode
	showHelp  bool
	width     int
	height    int
	now       time.Time
	quitting  bool
}

// NewModel creates a dashboard for hosts, kept in the given order until the
// user picks another sort.
func NewModel(hosts []Host, opts Options) Model {
	m := Model{
		targets:  make(map[string]string, len(hosts)),
		samples:  make(map[string]monitor.Sample),
		updated:  make(map[string]time.Time),
		history:  make(map[string]*monitor.History, len(hosts)),
		spinners: make(map[string]ui.HostSpinner, len(hosts)),
		errors:   make(map[string]string),
		connect:  opts.Connect,
		now:      time.Now(),
	}

	for _, h := range hosts {
		if _, dup := m.targets[h.Name]; dup {
			continue
		}
		m.order = append(m.order, h.Name)
		m.targets[h.Name] = h.Target
		m.history[h.Name] = monitor.NewHistory(opts.HistorySize)
		m.spinners[h.Name] = ui.NewHostSpinner(h.Name)
	}
	m.hosts = append([]string(nil), m.order...)
	return m
}

// Init starts every host and the header clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{clockCmd()}
	for _, h := range m.order {
		cmds = append(cmds, m.connectCmd(h))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case clockMsg:
		m.now = time.Time(msg)
		return m, clockCmd()

	case SampleMsg:
		if _, ok := m.targets[msg.Host]; !ok {
			return m, nil
		}
		m.samples[msg.Host] = msg.Sample
		m.updated[msg.Host] = msg.At
		m.history[msg.Host].Push(msg.Sample)
		delete(m.errors, msg.Host)
		if m.sortOrder != SortByName {
			m.sortHosts()
		}

	case StateMsg:
		sp, ok := m.spinners[msg.Host]
		if !ok {
			return m, nil
		}
		cmd := sp.SetState(msg.State)
		m.spinners[msg.Host] = sp
		if msg.State == remote.StateConnecting {
			delete(m.errors, msg.Host)
		}
		return m, cmd

	case ErrorMsg:
		if _, ok := m.targets[msg.Host]; !ok {
			return m, nil
		}
		if msg.Err == nil {
			delete(m.errors, msg.Host)
		} else {
			m.errors[msg.Host] = msg.Err.Error()
		}

	default:
		// Spinner ticks carry their own ID, so every spinner sees every
		// tick and ignores the ones that aren't its own.
		var cmds []tea.Cmd
		for h, sp := range m.spinners {
			next, cmd := sp.Update(msg)
			m.spinners[h] = next
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

func (m Model) connectCmd(host string) tea.Cmd {
	if m.connect == nil {
		return nil
	}
	return m.connect(host)
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Hosts returns the hosts in display order.
func (m Model) Hosts() []string {
	return append([]string(nil), m.hosts...)
}

// SelectedHost returns the name of the selected host.
func (m Model) SelectedHost() string {
	if m.selected >= 0 && m.selected < len(m.hosts) {
		return m.hosts[m.selected]
	}
	return ""
}

// State returns the last reported state of host.
func (m Model) State(host string) remote.State {
	if sp, ok := m.spinners[host]; ok {
		return sp.State
	}
	return remote.StateDisconnected
}

// Sample returns the latest sample for host. Samples from a previous
// connection are kept for display after a disconnect.
func (m Model) Sample(host string) (monitor.Sample, bool) {
	s, ok := m.samples[host]
	return s, ok
}

// ConnectedCount returns how many hosts are connected.
func (m Model) ConnectedCount() int {
	n := 0
	for _, sp := range m.spinners {
		if sp.State == remote.StateConnected {
			n++
		}
	}
	return n
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// sortHosts orders hosts by the current sort, keeping the selection on the
// same host.
func (m *Model) sortHosts() {
	selected := m.SelectedHost()

	switch m.sortOrder {
	case SortByName:
		m.hosts = append(m.hosts[:0], m.order...)
	case SortByCPU:
		m.sortByMetric(func(s monitor.Sample) float64 { return s.CPU })
	case SortByMem:
		m.sortByMetric(func(s monitor.Sample) float64 { return s.Mem })
	case SortByDisk:
		m.sortByMetric(func(s monitor.Sample) float64 { return s.Disk })
	}

	for i, h := range m.hosts {
		if h == selected {
			m.selected = i
			break
		}
	}
}

// sortByMetric sorts descending by the metric. Hosts without a value go
// last, in their original order.
func (m *Model) sortByMetric(metric func(monitor.Sample) float64) {
	index := make(map[string]int, len(m.order))
	for i, h := range m.order {
		index[h] = i
	}
	value := func(h string) float64 {
		s, ok := m.samples[h]
		if !ok {
			return math.NaN()
		}
		return metric(s)
	}

	sort.SliceStable(m.hosts, func(i, j int) bool {
		vi, vj := value(m.hosts[i]), value(m.hosts[j])
		ni, nj := math.IsNaN(vi), math.IsNaN(vj)
		switch {
		case ni && nj:
			return index[m.hosts[i]] < index[m.hosts[j]]
		case ni != nj:
			return nj
		case vi != vj:
			return vi > vj
		default:
			return index[m.hosts[i]] < index[m.hosts[j]]
		}
	})
}
