package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines all keyboard shortcuts shown in the help overlay.
var helpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Poll now (if idle)"},
	{Key: "e", Desc: "Export trend charts"},
	{Key: "up / k", Desc: "Select previous vehicle"},
	{Key: "down / j", Desc: "Select next vehicle"},
	{Key: "Enter", Desc: "Show raw payloads"},
	{Key: "Esc", Desc: "Back / close"},
	{Key: "?", Desc: "Toggle this help"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay renders a centered help box with keyboard shortcuts.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"), "")

	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}

	lines = append(lines, "", LabelStyle.Render("Press ? to close"))
	helpBox := helpBoxStyle.Render(strings.Join(lines, "\n"))

	if m.width == 0 || m.height == 0 {
		return helpBox
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
