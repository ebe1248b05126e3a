package dashboard

import (
	"math"
	"time"

	"github.com/rileyhilliard/pvdash/internal/config"
)

// Default polling cadence.
const (
	DefaultNormalInterval = 2 * time.Second
	DefaultSlowInterval   = 4 * time.Second
	DefaultThreshold      = 200.0
)

// Cadence picks the delay before the next poll cycle.
type Cadence struct {
	Adaptive  bool
	Normal    time.Duration
	Slow      time.Duration
	Threshold float64
}

// DefaultCadence is the adaptive 2s/4s cadence with a 200 m threshold.
func DefaultCadence() Cadence {
	return Cadence{
		Adaptive:  true,
		Normal:    DefaultNormalInterval,
		Slow:      DefaultSlowInterval,
		Threshold: DefaultThreshold,
	}
}

// NewCadence builds a cadence from config. The threshold is shared with the
// classify section so both agree on what "near" means.
func NewCadence(s config.ScheduleConfig, threshold float64) Cadence {
	c := Cadence{
		Adaptive:  s.Adaptive,
		Normal:    s.NormalInterval,
		Slow:      s.SlowInterval,
		Threshold: threshold,
	}
	if c.Normal <= 0 {
		c.Normal = DefaultNormalInterval
	}
	if c.Slow <= 0 {
		c.Slow = DefaultSlowInterval
	}
	return c
}

// NextDelay returns the slow interval when the nearest vehicle is within the
// threshold and the normal interval otherwise. Pass math.Inf(1) for a failed
// cycle so it retries at the normal interval.
func (c Cadence) NextDelay(nearest float64) time.Duration {
	if !c.Adaptive {
		return c.Normal
	}
	if nearest <= c.Threshold {
		return c.Slow
	}
	return c.Normal
}

// NearestDistance is the smallest numeric distance across states, with
// missing distances counting as +Inf.
func NearestDistance(states []PanelState) float64 {
	nearest := math.Inf(1)
	for _, s := range states {
		if s.Distance.Valid && s.Distance.Value < nearest {
			nearest = s.Distance.Value
		}
	}
	return nearest
}
