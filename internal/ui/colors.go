package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, as ANSI codes for broad terminal
// compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Brand accent used by the header.
const ColorAccent lipgloss.Color = "#60a5fa"

// DisableColors switches all lipgloss output to monochrome.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ApplyColorMode applies a dashboard.color setting: "always" forces true
// color, "never" disables colors, anything else keeps the detected profile.
func ApplyColorMode(mode string) {
	switch mode {
	case "never":
		DisableColors()
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
