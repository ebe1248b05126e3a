// Package sparkline draws a bounded history of distance samples as a small
// line chart: five horizontal gridlines with value labels, vertical gridlines
// labeled relative to the newest sample, and one trend line on top.
//
// Drawing goes through the Surface interface so the same chart can be
// rasterized into terminal braille (Canvas) or recorded for tests (Recorder).
package sparkline

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
)

// Style describes how a path is stroked or text is filled.
type Style struct {
	Color lipgloss.Color
	Width float64
}

// Surface is the set of draw primitives the renderer needs.
// Coordinates are in surface units with the origin at the top left.
type Surface interface {
	Clear()
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke(style Style)
	FillText(text string, x, y float64, style Style)
}

// Layout holds the chart paddings and label offsets, in surface units.
type Layout struct {
	Left, Right, Top, Bottom float64

	// YLabelX is where value labels start; YLabelDY shifts them off their gridline.
	YLabelX, YLabelDY float64
	// XLabelDX shifts offset labels left of their gridline; XLabelBottom is
	// their distance from the bottom edge.
	XLabelDX, XLabelBottom float64
}

// DefaultLayout matches a pixel canvas with room for "1234 m" labels.
var DefaultLayout = Layout{
	Left: 44, Right: 12, Top: 12, Bottom: 24,
	YLabelX: 4, YLabelDY: 4,
	XLabelDX: -10, XLabelBottom: 6,
}

// TerminalLayout is sized for a braille Canvas, where one cell is 2x4 dots.
// Value labels get the first eight cells and offset labels the last row.
var TerminalLayout = Layout{
	Left: 16, Right: 2, Top: 2, Bottom: 6,
	YLabelX: 0, YLabelDY: 0,
	XLabelDX: -4, XLabelBottom: 2,
}

// Chart colors shared by every panel.
var (
	GridStyle  = Style{Color: lipgloss.Color("#2a3444"), Width: 1}
	LabelStyle = Style{Color: lipgloss.Color("#93a4bd")}
)

// LineWidth is the trend line stroke width.
const LineWidth = 2

// GridRows is the number of horizontal gridlines.
const GridRows = 5

// Unit is appended to value labels.
const Unit = "m"

// Render draws samples onto s as a chart of the given size. It only touches s:
// the same inputs always produce the same sequence of draw calls.
// Empty input clears the surface and draws nothing else.
func Render(s Surface, samples []float64, width, height float64, color lipgloss.Color, l Layout) {
	s.Clear()
	n := len(samples)
	if n == 0 {
		return
	}

	minVal, maxVal := floats.Min(samples), floats.Max(samples)
	span := math.Max(1, maxVal-minVal)

	innerW := width - l.Left - l.Right
	innerH := height - l.Top - l.Bottom

	xAt := func(i int) float64 {
		return l.Left + float64(i)/float64(max(1, n-1))*innerW
	}
	yAt := func(v float64) float64 {
		return l.Top + innerH - (v-minVal)/span*innerH
	}

	// Horizontal gridlines at 0, 1/4, 1/2, 3/4 and 1 of the span.
	for i := 0; i < GridRows; i++ {
		t := float64(i) / float64(GridRows-1)
		y := l.Top + innerH - t*innerH
		s.BeginPath()
		s.MoveTo(l.Left, y)
		s.LineTo(l.Left+innerW, y)
		s.Stroke(GridStyle)
		s.FillText(ValueLabel(minVal+t*span), l.YLabelX, y+l.YLabelDY, LabelStyle)
	}

	// Vertical gridlines every Stride samples, counted back from the newest.
	step := Stride(n)
	for i := (n - 1) % step; i < n; i += step {
		x := xAt(i)
		s.BeginPath()
		s.MoveTo(x, l.Top)
		s.LineTo(x, l.Top+innerH)
		s.Stroke(GridStyle)
		s.FillText(OffsetLabel(n-1-i), math.Max(l.Left, x+l.XLabelDX), height-l.XLabelBottom, LabelStyle)
	}

	s.BeginPath()
	for i, v := range samples {
		if i == 0 {
			s.MoveTo(xAt(i), yAt(v))
			continue
		}
		s.LineTo(xAt(i), yAt(v))
	}
	if n == 1 {
		// A lone sample is a zero-length flat segment.
		s.LineTo(xAt(0), yAt(samples[0]))
	}
	s.Stroke(Style{Color: color, Width: LineWidth})
}

// Stride is the spacing, in samples, between vertical gridlines.
func Stride(n int) int {
	return max(1, n/5)
}

// ValueLabel formats a gridline value rounded to the nearest whole unit.
func ValueLabel(v float64) string {
	r := math.Round(v)
	if r == 0 {
		// Avoid "-0 m".
		r = 0
	}
	return fmt.Sprintf("%.0f %s", r, Unit)
}

// OffsetLabel names a sample by how many samples it is behind the newest.
func OffsetLabel(back int) string {
	if back == 0 {
		return "now"
	}
	return fmt.Sprintf("-%d", back)
}
