package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/util"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused in CLI output; keep the first row unhighlighted.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// VehicleRow is one row of the status table.
type VehicleRow struct {
	State     string // "priority", "idle", "ok" or "none"
	ID        string
	Label     string
	Distance  string
	Bearing   string
	Direction string
}

// RenderVehicleTable renders the status command's per-vehicle table.
func RenderVehicleTable(rows []VehicleRow) string {
	if len(rows) == 0 {
		return "No vehicles configured"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var output strings.Builder
	output.WriteString(headerStyle.Render("  STATE  VEHICLE          DISTANCE    BEARING   DIRECTION"))
	output.WriteString("\n")

	for _, row := range rows {
		var icon string
		switch row.State {
		case "priority":
			icon = warnStyle.Render(SymbolComplete)
		case "idle":
			icon = mutedStyle.Render(SymbolSkipped)
		case "ok":
			icon = successStyle.Render(SymbolComplete)
		default:
			icon = mutedStyle.Render(SymbolPending)
		}

		name := util.Truncate(row.Label, 16)
		if row.Label != row.ID && lipgloss.Width(name)+1+len(row.ID) <= 16 {
			name += " " + mutedStyle.Render(row.ID)
		}

		line := "  " + icon + "      " +
			util.PadRight(name, 17) +
			util.PadRight(row.Distance, 12) +
			util.PadRight(row.Bearing, 10) +
			row.Direction
		output.WriteString(line)
		output.WriteString("\n")
	}

	return output.String()
}
