package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/errors"
)

// HostInfo is one pickable host.
type HostInfo struct {
	Name   string // config name or ssh_config alias
	Target string // [user@]host[:port] as it will be dialed
	Source string // "config" or "ssh_config"
}

type hostItem struct {
	host HostInfo
}

func (i hostItem) Title() string { return i.host.Name }

func (i hostItem) Description() string {
	if i.host.Source == "" {
		return i.host.Target
	}
	return i.host.Target + " | " + i.host.Source
}

func (i hostItem) FilterValue() string {
	return strings.Join([]string{i.host.Name, i.host.Target}, " ")
}

// HostPickerModel is a Bubble Tea model for selecting a host.
type HostPickerModel struct {
	list     list.Model
	selected *HostInfo
	quitting bool
}

var hostPickerKeys = struct {
	Enter key.Binding
	Quit  key.Binding
}{
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "cancel")),
}

// NewHostPickerModel creates a picker over hosts.
func NewHostPickerModel(hosts []HostInfo) HostPickerModel {
	items := make([]list.Item, len(hosts))
	for i, h := range hosts {
		items[i] = hostItem{host: h}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = "Select a host to monitor"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	return HostPickerModel{list: l}
}

// Init implements tea.Model.
func (m HostPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HostPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While filtering, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, hostPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(hostItem); ok {
				h := item.host
				m.selected = &h
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, hostPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HostPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the selected host, or nil if cancelled.
func (m HostPickerModel) Selected() *HostInfo {
	return m.selected
}

// PickHost displays the picker on the terminal. It returns nil without
// error when the user cancels.
func PickHost(hosts []HostInfo) (*HostInfo, error) {
	return PickHostWithIO(hosts, os.Stdout, os.Stdin)
}

// PickHostWithIO runs the picker with custom I/O. A single host is
// returned without prompting.
func PickHostWithIO(hosts []HostInfo, output io.Writer, input io.Reader) (*HostInfo, error) {
	if len(hosts) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No hosts to pick from",
			"Pass a host like 'rstat watch user@host', or run 'rstat init' to configure one")
	}
	if len(hosts) == 1 {
		h := hosts[0]
		return &h, nil
	}

	p := tea.NewProgram(NewHostPickerModel(hosts), tea.WithOutput(output), tea.WithInput(input))
	final, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Host picker failed",
			"Name the host on the command line instead")
	}
	if m, ok := final.(HostPickerModel); ok {
		return m.Selected(), nil
	}
	return nil, nil
}
