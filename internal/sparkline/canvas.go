package sparkline

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty); each dot is one bit.
const brailleBase = '\u2800'

// brailleDots maps [row][col] inside a cell to the bit for that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

type point struct{ x, y float64 }

type cell struct {
	dots  uint8
	color lipgloss.Color
	text  rune
	tcol  lipgloss.Color
}

// Canvas is a Surface backed by a grid of braille characters. Each cell is
// 2 dots wide and 4 dots tall, so a 30x6 canvas is a 60x24 dot surface.
// Text is drawn one rune per cell and always wins over dots.
type Canvas struct {
	cols, rows int
	cells      []cell
	path       [][]point
}

// NewCanvas creates a canvas cols characters wide and rows lines tall.
func NewCanvas(cols, rows int) *Canvas {
	cols = max(cols, 0)
	rows = max(rows, 0)
	return &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// Width is the surface width in dots.
func (c *Canvas) Width() float64 { return float64(c.cols * 2) }

// Height is the surface height in dots.
func (c *Canvas) Height() float64 { return float64(c.rows * 4) }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
	c.path = nil
}

func (c *Canvas) BeginPath() {
	c.path = nil
}

func (c *Canvas) MoveTo(x, y float64) {
	c.path = append(c.path, []point{{x, y}})
}

func (c *Canvas) LineTo(x, y float64) {
	if len(c.path) == 0 {
		c.MoveTo(x, y)
		return
	}
	last := len(c.path) - 1
	c.path[last] = append(c.path[last], point{x, y})
}

// Stroke rasterizes the current path. Later strokes recolor the cells they touch.
func (c *Canvas) Stroke(style Style) {
	for _, sub := range c.path {
		if len(sub) == 1 {
			c.plot(dot(sub[0].x), dot(sub[0].y), style.Color)
			continue
		}
		for i := 1; i < len(sub); i++ {
			c.line(dot(sub[i-1].x), dot(sub[i-1].y), dot(sub[i].x), dot(sub[i].y), style.Color)
		}
	}
}

// FillText writes text starting at the cell containing (x, y). Runes past
// the right edge are dropped.
func (c *Canvas) FillText(text string, x, y float64, style Style) {
	row := int(math.Floor(y / 4))
	col := int(math.Floor(x / 2))
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range text {
		if col >= c.cols {
			return
		}
		if col >= 0 {
			cl := &c.cells[row*c.cols+col]
			cl.text = r
			cl.tcol = style.Color
		}
		col++
	}
}

func dot(v float64) int {
	return int(math.Round(v))
}

// plot sets one dot, ignoring anything off the surface.
func (c *Canvas) plot(x, y int, color lipgloss.Color) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	cl := &c.cells[(y/4)*c.cols+x/2]
	cl.dots |= 1 << brailleDots[y%4][x%2]
	cl.color = color
}

// line plots a segment with Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int, color lipgloss.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.plot(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rune returns the character shown at a cell, or 0 outside the canvas.
func (c *Canvas) Rune(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	cl := c.cells[row*c.cols+col]
	switch {
	case cl.text != 0:
		return cl.text
	case cl.dots != 0:
		return brailleBase + rune(cl.dots)
	default:
		return ' '
	}
}

// Plain returns the canvas as uncolored lines.
func (c *Canvas) Plain() string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var b strings.Builder
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.Rune(col, row))
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

// String renders the canvas with lipgloss colors. Runs of cells sharing a
// color are styled together.
func (c *Canvas) String() string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var (
			b   strings.Builder
			run strings.Builder
			cur lipgloss.Color
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(cur).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			var color lipgloss.Color
			switch {
			case cl.text != 0:
				color = cl.tcol
			case cl.dots != 0:
				color = cl.color
			}
			if color != cur {
				flush()
				cur = color
			}
			run.WriteRune(c.Rune(col, row))
		}
		flush()
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}
