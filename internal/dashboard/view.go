package dashboard

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/util"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if line := m.renderStatusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderPanelCards())

	if m.ShowFooter() {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}
	return b.String()
}

// renderHeader renders the title, aggregate badge and cycle timing.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("pvdash")

	var timing string
	switch {
	case m.engine.Last() == nil:
		timing = m.spinner.View() + " connecting"
	case m.inFlight:
		timing = fmt.Sprintf("updated %s | %s polling", FormatAge(m.SinceUpdate()), m.spinner.View())
	default:
		timing = fmt.Sprintf("updated %s | next in %s", FormatAge(m.SinceUpdate()), FormatDelay(m.NextIn()))
	}

	stats := LabelStyle.Render(fmt.Sprintf(" | %s policy | ", m.engine.Policy().Name())) + LabelStyle.Render(timing)

	return HeaderStyle.Render(RenderBadge(m.Status()) + " " + title + stats)
}

// renderStatusLine shows the controller state, or why the last cycle failed.
func (m Model) renderStatusLine() string {
	last := m.engine.Last()
	if last == nil {
		return ""
	}
	if !last.OK() {
		return FooterStyle.Render(ErrorStyle.Render("✗ " + errors.Summary(last.Err)))
	}
	ctrl := m.engine.Controller()
	mode := ctrl.Mode
	if mode == "" {
		mode = Placeholder
	}
	direction := ctrl.Direction
	if direction == "" {
		direction = Placeholder
	}
	return FooterStyle.Render(LabelStyle.Render("controller ") + ValueStyle.Render(mode) +
		LabelStyle.Render("  direction ") + ValueStyle.Render(direction))
}

// renderPanelCards renders one card per vehicle in a grid.
func (m Model) renderPanelCards() string {
	panels := m.engine.Panels()
	if len(panels) == 0 {
		return LabelStyle.Render("No vehicles configured")
	}

	cardWidth := m.calculateCardWidth()
	states := m.engine.States()

	var cards []string
	for i, p := range panels {
		var st *PanelState
		if i < len(states) {
			st = &states[i]
		}
		cards = append(cards, m.renderCard(p, st, cardWidth, i == m.selected))
	}
	return m.layoutCards(cards, cardWidth)
}

// calculateCardWidth fits two cards side by side on wide terminals.
func (m Model) calculateCardWidth() int {
	switch {
	case m.width == 0:
		return 48
	case m.width >= BreakpointTwoColumn:
		return m.width/2 - 3
	default:
		return max(m.width-4, 24)
	}
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	cardsPerRow := 1
	if m.width > 0 {
		// margin + border
		cardsPerRow = max(m.width/(cardWidth+3), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := min(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard hints and the last notice.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"e export",
		"↑↓ select",
		"enter payloads",
		"? help",
	}
	footer := FooterStyle.Render(strings.Join(hints, " | "))
	if m.notice != "" {
		footer += "\n" + FooterStyle.Render(NoticeStyle.Render(m.notice))
	}
	return footer
}

func exportNotice(msg exportResultMsg) string {
	if msg.err != nil {
		return "✗ " + errors.Summary(msg.err)
	}
	if len(msg.paths) == 0 {
		return "nothing to export yet"
	}
	return fmt.Sprintf("✓ exported %s to %s", util.CountNoun(len(msg.paths), "chart", "charts"), filepath.Dir(msg.paths[0]))
}
