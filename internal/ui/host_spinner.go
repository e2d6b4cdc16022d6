package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/remote"
)

// SpinnerFrames is the half-circle animation used while a host connects.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 8,
}

// HostSpinner shows a host's connection state inside a Bubble Tea model.
// It only animates while the host is connecting or disconnecting.
type HostSpinner struct {
	spinner spinner.Model
	Host    string
	State   remote.State
	Since   time.Time
}

// NewHostSpinner creates a spinner for host in the disconnected state.
func NewHostSpinner(host string) HostSpinner {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	return HostSpinner{
		spinner: sp,
		Host:    host,
		State:   remote.StateDisconnected,
	}
}

// Tick returns the command that drives the animation.
func (s HostSpinner) Tick() tea.Cmd {
	return s.spinner.Tick
}

// SetState records a state change. It returns a tick command when the new
// state animates, so the caller can restart the animation loop.
func (s *HostSpinner) SetState(state remote.State) tea.Cmd {
	if s.State == state {
		return nil
	}
	s.State = state
	s.Since = time.Now()
	if s.Animating() {
		return s.spinner.Tick
	}
	return nil
}

// Animating reports whether the spinner is in a transitional state.
func (s HostSpinner) Animating() bool {
	return s.State == remote.StateConnecting || s.State == remote.StateDisconnecting
}

// Update advances the animation on spinner ticks. Ticks that arrive while
// the host is settled are dropped, which ends the tick loop.
func (s HostSpinner) Update(msg tea.Msg) (HostSpinner, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.Animating() {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return s, cmd
}

// Indicator renders the state glyph, animated while connecting.
func (s HostSpinner) Indicator() string {
	switch s.State {
	case remote.StateConnecting, remote.StateDisconnecting:
		return s.spinner.View()
	case remote.StateConnected:
		return lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolComplete)
	default:
		return lipgloss.NewStyle().Foreground(ColorMuted).Render(SymbolPending)
	}
}

// View renders the indicator, host name and state.
func (s HostSpinner) View() string {
	label := string(s.State)
	if s.Animating() {
		label += "..."
	}
	return s.Indicator() + " " + s.Host + " " + lipgloss.NewStyle().Foreground(ColorMuted).Render(label)
}
