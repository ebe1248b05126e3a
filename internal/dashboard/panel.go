package dashboard

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/sparkline"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// NoDirection is shown when neither the controller nor the event has one.
const NoDirection = "—"

// Panel tracks one vehicle: its recent distance samples and when the last
// distinct sample arrived. Panels live for the whole process; only the
// history and timestamps change from cycle to cycle.
type Panel struct {
	ID    string
	Label string
	Color lipgloss.Color

	history    *History
	lastTS     telemetry.Timestamp
	lastSample time.Time
}

// Reading is what a panel extracted from one cycle's payloads.
type Reading struct {
	Distance  telemetry.Number
	Bearing   telemetry.Number
	Direction string
	// Appended is true when the event carried a new sample.
	Appended bool
	Event    telemetry.Event
}

// NewPanel creates a panel for a vehicle. The idle clock starts at created,
// so a vehicle that never reports goes idle after the idle timeout.
func NewPanel(v config.Vehicle, historySize int, created time.Time) *Panel {
	return &Panel{
		ID:         v.ID,
		Label:      v.DisplayName(),
		Color:      lipgloss.Color(v.Color),
		history:    NewHistory(historySize),
		lastSample: created,
	}
}

// Update folds one event into the panel. A sample is appended only when the
// distance is numeric and the event timestamp is present and differs from
// the last accepted one.
func (p *Panel) Update(ev telemetry.Event, ctrl telemetry.ControllerState, now time.Time) Reading {
	r := Reading{
		Distance:  ev.Distance,
		Bearing:   ev.Bearing,
		Direction: ResolveDirection(ctrl, ev),
		Event:     ev,
	}

	if ev.Distance.Valid && ev.TS.Present() && ev.TS != p.lastTS {
		p.history.Push(ev.Distance.Value)
		p.lastTS = ev.TS
		p.lastSample = now
		r.Appended = true
	}
	return r
}

// ResolveDirection prefers the controller's direction, then the event's.
func ResolveDirection(ctrl telemetry.ControllerState, ev telemetry.Event) string {
	switch {
	case ctrl.Direction != "":
		return ctrl.Direction
	case ev.Direction != "":
		return ev.Direction
	default:
		return NoDirection
	}
}

// Samples returns the distance history, oldest first.
func (p *Panel) Samples() []float64 {
	return p.history.Values()
}

// SampleCount is the number of samples in the history.
func (p *Panel) SampleCount() int {
	return p.history.Len()
}

// LastTimestamp is the last accepted source timestamp.
func (p *Panel) LastTimestamp() telemetry.Timestamp {
	return p.lastTS
}

// LastSampleAt is the wall-clock time the last sample was accepted.
func (p *Panel) LastSampleAt() time.Time {
	return p.lastSample
}

// SinceLastSample is how long ago the last sample was accepted.
func (p *Panel) SinceLastSample(now time.Time) time.Duration {
	return now.Sub(p.lastSample)
}

// Draw repaints the panel's trend onto s.
func (p *Panel) Draw(s sparkline.Surface, width, height float64, layout sparkline.Layout) {
	sparkline.Render(s, p.history.Values(), width, height, p.Color, layout)
}
