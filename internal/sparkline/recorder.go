package sparkline

import "fmt"

// OpKind identifies a recorded draw call.
type OpKind string

const (
	OpClear     OpKind = "clear"
	OpBeginPath OpKind = "begin"
	OpMoveTo    OpKind = "move"
	OpLineTo    OpKind = "line"
	OpStroke    OpKind = "stroke"
	OpFillText  OpKind = "text"
)

// Op is one recorded draw call.
type Op struct {
	Kind  OpKind
	X, Y  float64
	Text  string
	Style Style
}

func (o Op) String() string {
	switch o.Kind {
	case OpMoveTo, OpLineTo:
		return fmt.Sprintf("%s(%.2f,%.2f)", o.Kind, o.X, o.Y)
	case OpFillText:
		return fmt.Sprintf("%s(%q,%.2f,%.2f)", o.Kind, o.Text, o.X, o.Y)
	case OpStroke:
		return fmt.Sprintf("%s(%s,%g)", o.Kind, o.Style.Color, o.Style.Width)
	default:
		return string(o.Kind)
	}
}

// Recorder is a Surface that keeps every call instead of drawing.
type Recorder struct {
	Ops []Op
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Clear drops everything recorded so far and records the clear itself.
func (r *Recorder) Clear() {
	r.Ops = []Op{{Kind: OpClear}}
}

func (r *Recorder) BeginPath() { r.Ops = append(r.Ops, Op{Kind: OpBeginPath}) }

func (r *Recorder) MoveTo(x, y float64) { r.Ops = append(r.Ops, Op{Kind: OpMoveTo, X: x, Y: y}) }

func (r *Recorder) LineTo(x, y float64) { r.Ops = append(r.Ops, Op{Kind: OpLineTo, X: x, Y: y}) }

func (r *Recorder) Stroke(style Style) { r.Ops = append(r.Ops, Op{Kind: OpStroke, Style: style}) }

func (r *Recorder) FillText(text string, x, y float64, style Style) {
	r.Ops = append(r.Ops, Op{Kind: OpFillText, Text: text, X: x, Y: y, Style: style})
}

// Texts returns the filled strings in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpFillText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Paths returns the points of every stroked path, paired with its style.
func (r *Recorder) Paths() ([][]Op, []Style) {
	var (
		paths  [][]Op
		styles []Style
		cur    []Op
	)
	for _, op := range r.Ops {
		switch op.Kind {
		case OpBeginPath:
			cur = nil
		case OpMoveTo, OpLineTo:
			cur = append(cur, op)
		case OpStroke:
			paths = append(paths, cur)
			styles = append(styles, op.Style)
		}
	}
	return paths, styles
}
