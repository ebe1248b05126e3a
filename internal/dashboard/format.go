package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// Placeholder is shown for missing values.
const Placeholder = "—"

// FormatDistance formats meters, or the placeholder for +Inf/NaN.
func FormatDistance(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Placeholder
	}
	return fmt.Sprintf("%.1f m", v)
}

// FormatNumberDistance formats an optional distance.
func FormatNumberDistance(n telemetry.Number) string {
	if !n.Valid {
		return Placeholder
	}
	return FormatDistance(n.Value)
}

// FormatBearing formats an optional bearing in degrees.
func FormatBearing(n telemetry.Number) string {
	if !n.Valid {
		return Placeholder
	}
	return fmt.Sprintf("%.1f°", n.Value)
}

// FormatDelay formats a delay compactly ("2s", "1.5s").
func FormatDelay(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}

// FormatAge formats how long ago something happened.
func FormatAge(d time.Duration) string {
	switch s := int(d.Seconds()); {
	case s <= 0:
		return "just now"
	case s < 60:
		return fmt.Sprintf("%ds ago", s)
	default:
		return fmt.Sprintf("%dm%02ds ago", s/60, s%60)
	}
}

// PanelFlags is the short state marker used in plain output.
func PanelFlags(s PanelState) string {
	var flags []string
	if s.Priority {
		flags = append(flags, "priority")
	}
	if s.Idle {
		flags = append(flags, "idle")
	}
	if len(flags) == 0 {
		return ""
	}
	return "[" + strings.Join(flags, ",") + "]"
}

// FormatLine renders an outcome as one log-style line for headless mode.
func FormatLine(o *Outcome) string {
	var b strings.Builder
	b.WriteString(o.Finished.Format("15:04:05"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-12s", o.Status))

	if !o.OK() {
		b.WriteString(" ")
		b.WriteString(errors.Summary(o.Err))
	} else {
		for _, s := range o.Panels {
			b.WriteString(" | ")
			b.WriteString(s.ID)
			b.WriteString(" ")
			b.WriteString(FormatNumberDistance(s.Distance))
			b.WriteString(" ")
			b.WriteString(s.Direction)
			if f := PanelFlags(s); f != "" {
				b.WriteString(" ")
				b.WriteString(f)
			}
		}
	}
	b.WriteString(" | next ")
	b.WriteString(FormatDelay(o.NextDelay))
	return b.String()
}
