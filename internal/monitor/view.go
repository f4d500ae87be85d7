package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.viewMode == ViewDetail {
		b.WriteString(m.renderDetail())
	} else {
		b.WriteString(m.renderCards())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	var updateText string
	switch {
	case m.lastUpdate.IsZero():
		updateText = "waiting for first poll"
	case m.SecondsSinceUpdate() == 0:
		updateText = "last update just now"
	default:
		updateText = fmt.Sprintf("last update %ds ago", m.SecondsSinceUpdate())
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("asuswrt watch")

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %d routers | %d online | %s", len(m.names), m.OnlineCount(), updateText))

	return HeaderStyle.Render(title + stats)
}

// renderCards lays out one card per router, wrapping to the terminal width.
func (m Model) renderCards() string {
	if len(m.names) == 0 {
		return MutedStyle.Render("No routers configured. Run 'asuswrt init' to add one.")
	}

	cards := make([]string, len(m.names))
	for i, name := range m.names {
		cards[i] = m.renderCard(name, i == m.selected)
	}

	perRow := 1
	if w := lipgloss.Width(cards[0]); w > 0 && m.width > w {
		perRow = m.width / w
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := start + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the key hints for the current view.
func (m Model) renderFooter() string {
	hints := "q quit  r refresh  ↑/↓ select  enter devices  ? help"
	if m.viewMode == ViewDetail {
		hints = "q quit  r refresh  ↑/↓ scroll  s sort  esc back  ? help"
	}
	return FooterStyle.Render(hints)
}
