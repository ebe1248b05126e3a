package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // Version string (e.g., "v0.4.0")
	Tagline string // Optional tagline
	Source  string // Optional config path or upstream to display
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the branded header used by one-shot commands.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	versionStyle := lipgloss.NewStyle().
		Foreground(ColorInfo)

	taglineStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	dividerStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	var output strings.Builder

	output.WriteString(titleStyle.Render("pvdash"))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(versionStyle.Render(info.Version))
	}
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(taglineStyle.Render(info.Tagline))
		output.WriteString("\n")
	}

	if info.Source != "" {
		output.WriteString(lipgloss.NewStyle().Foreground(ColorMuted).Render(info.Source))
		output.WriteString("\n")
	}

	output.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader writes the styled header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}
