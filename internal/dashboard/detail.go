package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	detailSectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	detailCodeStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderDetailView renders the selected vehicle's raw payloads in a scrollable viewport.
func (m Model) renderDetailView() string {
	p := m.SelectedPanel()
	if p == nil {
		return LabelStyle.Render("No vehicle selected")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(RenderBadge(m.Status()) + " " +
		lipgloss.NewStyle().Foreground(p.Color).Bold(true).Render(p.Label) + " " + MutedStyle.Render(p.ID)))
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.detailContent(p))
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("esc back | ↑↓ scroll | r refresh | q quit"))
	return b.String()
}

// updateDetailViewportContent refreshes the viewport with the selected panel's payloads.
func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	p := m.SelectedPanel()
	if p == nil {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.detailContent(p))
}

// detailContent lists the last event and controller payloads for p,
// followed by the sample history.
func (m Model) detailContent(p *Panel) string {
	var st *PanelState
	states := m.engine.States()
	for i := range states {
		if states[i].ID == p.ID {
			st = &states[i]
		}
	}

	var lines []string
	lines = append(lines, detailSectionTitleStyle.Render("Server event"))
	if st == nil || len(st.Event.Raw) == 0 {
		lines = append(lines, MutedStyle.Render("  no payload yet"))
	} else {
		lines = append(lines, detailCodeStyle.Render(prettyJSON(st.Event.Raw)))
	}

	lines = append(lines, "", detailSectionTitleStyle.Render("Controller state"))
	if ctrl := m.engine.Controller(); len(ctrl.Raw) == 0 {
		lines = append(lines, MutedStyle.Render("  no payload yet"))
	} else {
		lines = append(lines, detailCodeStyle.Render(prettyJSON(ctrl.Raw)))
	}

	lines = append(lines, "", detailSectionTitleStyle.Render("History"))
	samples := p.Samples()
	if len(samples) == 0 {
		lines = append(lines, MutedStyle.Render("  no samples yet"))
	} else {
		vals := make([]string, len(samples))
		for i, v := range samples {
			vals[i] = fmt.Sprintf("%.1f", v)
		}
		lines = append(lines, LabelStyle.Render(fmt.Sprintf("  %d samples, last ts %s", len(samples), p.LastTimestamp().Key())))
		lines = append(lines, detailCodeStyle.Render("  "+strings.Join(vals, " ")))
	}

	return strings.Join(lines, "\n")
}

// prettyJSON indents a payload, falling back to the raw text.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "  ", "  "); err != nil {
		return "  " + string(raw)
	}
	return "  " + buf.String()
}
