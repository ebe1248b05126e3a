package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette, slate on near-black.
const (
	ColorDarkBg    = lipgloss.Color("#0b1220")
	ColorSurfaceBg = lipgloss.Color("#111a2e")
	ColorBorder    = lipgloss.Color("#24324a")

	ColorNormal       = lipgloss.Color("#22c55e")
	ColorPriority     = lipgloss.Color("#f59e0b")
	ColorPaused       = lipgloss.Color("#93a4bd")
	ColorDisconnected = lipgloss.Color("#ef4444")

	ColorTextPrimary   = lipgloss.Color("#e5edf7")
	ColorTextSecondary = lipgloss.Color("#93a4bd")
	ColorTextMuted     = lipgloss.Color("#5b6b84")

	ColorAccent = lipgloss.Color("#60a5fa")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	CardPriorityStyle = CardStyle.
				BorderForeground(ColorPriority)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDisconnected)
)

// Health dot glyphs.
const (
	DotLive    = "◉"
	DotIdle    = "◌"
	DotOffline = "◌"
	DotPending = "◐"
)

// StatusColor returns the badge color for a status.
func StatusColor(s Status) lipgloss.Color {
	switch s {
	case StatusNormal:
		return ColorNormal
	case StatusPriority:
		return ColorPriority
	case StatusDisconnected:
		return ColorDisconnected
	default:
		return ColorPaused
	}
}

// BadgeStyle returns the style for a status badge.
func BadgeStyle(s Status) lipgloss.Style {
	c := StatusColor(s)
	return lipgloss.NewStyle().
		Foreground(c).
		Border(lipgloss.NormalBorder(), false, true).
		BorderForeground(c).
		Bold(true).
		Padding(0, 1)
}

// RenderBadge renders a status badge.
func RenderBadge(s Status) string {
	return BadgeStyle(s).Render(s.String())
}

// PanelBadge renders the small per-panel PRIORITY/NORMAL/IDLE marker,
// tinted with the panel's own color while it is priority.
func PanelBadge(st PanelState, color lipgloss.Color) string {
	switch {
	case st.Idle:
		return MutedStyle.Render("IDLE")
	case st.Priority:
		return lipgloss.NewStyle().Foreground(ColorDarkBg).Background(color).Bold(true).Padding(0, 1).Render("PRIORITY")
	default:
		return lipgloss.NewStyle().Foreground(color).Render("NORMAL")
	}
}
