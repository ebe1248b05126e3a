// Package util holds small text helpers shared by the terminal views.
package util

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountNoun formats a count with the matching noun, e.g. "1 chart" or "3 charts".
func CountNoun(count int, singular, plural string) string {
	return strconv.Itoa(count) + " " + Pluralize(count, singular, plural)
}

// PadRight pads s with spaces to width display cells. Escape sequences
// don't count toward the width.
func PadRight(s string, width int) string {
	visible := ansi.StringWidth(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// Truncate shortens s to at most width display cells, ending in "…" when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
