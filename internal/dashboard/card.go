package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/sparkline"
)

// Card layout constants
const (
	cardGraphRows     = 6
	cardMinGraphWidth = 20
	cardLabelWidth    = 10
)

var cardDividerStyle = lipgloss.NewStyle().Foreground(ColorBorder)

// renderCardDivider creates a subtle thin divider line
func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// renderCard renders one vehicle card. st is nil until the first successful cycle.
func (m Model) renderCard(p *Panel, st *PanelState, width int, selected bool) string {
	style := CardStyle.Width(width)
	switch {
	case selected:
		style = CardSelectedStyle.Width(width)
	case st != nil && st.Priority && !st.Idle && m.Status() != StatusDisconnected:
		style = CardPriorityStyle.Width(width)
	}

	// Inner width for content (account for card padding)
	innerWidth := width - 4

	var lines []string
	lines = append(lines, m.renderTitleLine(p, st, innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	if st == nil {
		lines = append(lines, LabelStyle.Render("  Waiting for telemetry..."))
	} else {
		lines = append(lines,
			metricPair("Distance", FormatNumberDistance(st.Distance), "Bearing", FormatBearing(st.Bearing), innerWidth),
			metricPair("Direction", st.Direction, "Samples", fmt.Sprintf("%d/%d", st.Samples, p.history.Cap()), innerWidth),
		)
	}

	lines = append(lines, renderCardDivider(innerWidth))
	lines = append(lines, renderTrend(p, max(innerWidth, cardMinGraphWidth), cardGraphRows))

	if st != nil {
		lines = append(lines, MutedStyle.Render("last sample "+FormatAge(st.SinceLast)))
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderTitleLine renders the health dot, label and id on the left and the
// per-panel badge on the right.
func (m Model) renderTitleLine(p *Panel, st *PanelState, width int) string {
	left := m.healthDot(st) + " " + TitleStyle.Render(p.Label)
	if p.Label != p.ID {
		left += " " + MutedStyle.Render(p.ID)
	}

	right := ""
	if st != nil {
		right = PanelBadge(*st, p.Color)
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// healthDot shows whether the panel is receiving fresh samples.
func (m Model) healthDot(st *PanelState) string {
	switch {
	case m.Status() == StatusConnecting:
		return m.spinner.View()
	case m.Status() == StatusDisconnected:
		return ErrorStyle.Render(DotOffline)
	case st == nil:
		return MutedStyle.Render(DotPending)
	case st.Idle:
		return MutedStyle.Render(DotIdle)
	default:
		return lipgloss.NewStyle().Foreground(ColorNormal).Render(DotLive)
	}
}

// metricPair renders two label/value columns on one line.
func metricPair(l1, v1, l2, v2 string, width int) string {
	col := width / 2
	left := LabelStyle.Width(cardLabelWidth).Render(l1) + ValueStyle.Render(v1)
	left = lipgloss.NewStyle().Width(col).Render(left)
	right := LabelStyle.Width(cardLabelWidth).Render(l2) + ValueStyle.Render(v2)
	return left + right
}

// renderTrend draws the panel history into a braille canvas.
func renderTrend(p *Panel, cols, rows int) string {
	c := sparkline.NewCanvas(cols, rows)
	p.Draw(c, c.Width(), c.Height(), sparkline.TerminalLayout)
	if p.SampleCount() == 0 {
		placeholder := MutedStyle.Render("no samples yet")
		return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, placeholder)
	}
	return c.String()
}
