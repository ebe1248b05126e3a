// Package export writes the in-memory distance histories as PNG trend charts.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Chart size on disk.
const (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 3 * vg.Inch
)

var fallbackColor = color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 255}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Options tune the charts.
type Options struct {
	// Threshold draws a dashed reference line when positive.
	Threshold float64
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// WritePNG writes one chart per series with at least one sample into a
// timestamped directory under dir. It returns the written paths.
func WritePNG(dir string, series []dashboard.Series, now time.Time, opts Options) ([]string, error) {
	var withData []dashboard.Series
	for _, s := range series {
		if len(s.Samples) > 0 {
			withData = append(withData, s)
		}
	}
	if len(withData) == 0 {
		return nil, nil
	}

	outDir := filepath.Join(dir, FormatTimestamp(now))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't create export directory "+outDir,
			"Check that the directory is writable or set export.dir")
	}

	var paths []string
	for _, s := range withData {
		p, err := Chart(s, opts)
		if err != nil {
			return paths, err
		}
		file := filepath.Join(outDir, FileName(s.ID))
		if err := p.Save(ChartWidth, ChartHeight, file); err != nil {
			return paths, errors.WrapWithCode(err, errors.ErrExport,
				"Couldn't write chart "+file, "")
		}
		paths = append(paths, file)
	}
	return paths, nil
}

// Chart builds the trend plot for one series. The X axis counts samples back
// from the newest one, which sits at 0.
func Chart(s dashboard.Series, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s) - distance", s.Label, s.ID)
	p.X.Label.Text = "Samples (0 = newest)"
	p.Y.Label.Text = "Distance (m)"
	p.Add(plotter.NewGrid())

	n := len(s.Samples)
	pts := make(plotter.XYs, n)
	for i, v := range s.Samples {
		pts[i] = plotter.XY{X: float64(i - (n - 1)), Y: v}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Couldn't plot samples for "+s.ID, "")
	}
	line.Color = ParseColor(string(s.Color))
	line.Width = vg.Points(1.5)
	p.Add(line)

	if opts.Threshold > 0 {
		x0 := float64(-(n - 1))
		ref, err := plotter.NewLine(plotter.XYs{{X: x0, Y: opts.Threshold}, {X: 0, Y: opts.Threshold}})
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrExport, "Couldn't plot threshold", "")
		}
		ref.Color = color.Gray{Y: 0x93}
		ref.Width = vg.Points(1)
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("threshold %.0f m", opts.Threshold), ref)
	}
	p.Legend.Add(s.Label, line)
	p.Legend.Top = true

	return p, nil
}

// ParseColor converts a #rgb or #rrggbb color, falling back to the accent blue.
func ParseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallbackColor
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FileName maps a vehicle id to a safe file name.
func FileName(id string) string {
	name := unsafeName.ReplaceAllString(id, "_")
	if name == "" || name == "." || name == ".." {
		name = "vehicle"
	}
	return name + ".png"
}

// New returns a dashboard exporter writing into dir.
func New(dir string, opts Options) dashboard.Exporter {
	return func(series []dashboard.Series) ([]string, error) {
		return WritePNG(dir, series, time.Now(), opts)
	}
}
