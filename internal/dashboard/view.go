package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rstat/internal/util"
)

// renderDashboard renders the header, card grid and footer.
func (m Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderHostCards())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title with host counts and data age.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("rstat top")
	stats := fmt.Sprintf(" | %s | %d connected | sort: %s | updated %s",
		util.CountNoun(len(m.hosts), "host", "hosts"), m.ConnectedCount(), m.sortOrder, formatAge(m.lastUpdate(), m.now))
	return HeaderStyle.Render(title + lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(stats))
}

// lastUpdate returns the newest sample time across hosts.
func (m Model) lastUpdate() time.Time {
	var last time.Time
	for _, at := range m.updated {
		if at.After(last) {
			last = at
		}
	}
	return last
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	secs := int(now.Sub(at).Seconds())
	switch {
	case secs <= 0:
		return "just now"
	case secs == 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// renderHostCards renders the grid of host cards.
func (m Model) renderHostCards() string {
	if len(m.hosts) == 0 {
		return LabelStyle.Render("No hosts to monitor")
	}

	width := m.cardWidth()
	cards := make([]string, len(m.hosts))
	for i, host := range m.hosts {
		cards[i] = m.renderCard(host, width, i == m.selected)
	}
	return m.layoutCards(cards, width)
}

// cardWidth picks a card width for the terminal.
func (m Model) cardWidth() int {
	if m.width == 0 || m.width >= 80 {
		return defaultCardWidth
	}
	return max(m.width-4, 20)
}

// layoutCards arranges cards in rows that fit the terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	perRow := 1
	if m.width > 0 {
		// margin + border
		perRow = max(m.width/(cardWidth+3), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard hints.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "s sort", "enter details", "r reconnect", "? help"}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
