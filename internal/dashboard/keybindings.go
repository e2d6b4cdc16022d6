package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rstat/internal/remote"
)

// SortOrder defines how hosts are sorted in the dashboard.
type SortOrder int

const (
	SortByName SortOrder = iota
	SortByCPU
	SortByMem
	SortByDisk
	sortOrderCount
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByCPU:
		return "cpu"
	case SortByMem:
		return "mem"
	case SortByDisk:
		return "disk"
	default:
		return "name"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return (s + 1) % sortOrderCount
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyReconnect   = "r"
	KeyCycleSort   = "s"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input. It reports whether the key was
// handled along with any command to run.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if key == KeyCollapse {
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.viewMode == ViewDetail:
			m.viewMode = ViewList
		}
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyReconnect:
		host := m.SelectedHost()
		if host == "" || m.State(host) != remote.StateDisconnected {
			return true, nil
		}
		return true, m.connectCmd(host)

	case KeyCycleSort:
		m.sortOrder = m.sortOrder.Next()
		m.sortHosts()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.hosts)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.hosts) > 0 {
			m.selected = len(m.hosts) - 1
		}
		return true, nil

	case KeyExpand:
		if len(m.hosts) > 0 {
			m.viewMode = ViewDetail
		}
		return true, nil
	}

	return false, nil
}
