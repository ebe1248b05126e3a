package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// Status is the dashboard-wide status badge.
type Status string

const (
	// StatusConnecting is shown until the first cycle completes.
	StatusConnecting   Status = "CONNECTING"
	StatusNormal       Status = "NORMAL"
	StatusPriority     Status = "PRIORITY"
	StatusPaused       Status = "PAUSED"
	StatusDisconnected Status = "DISCONNECTED"
)

// Statuses lists every status, in badge order.
var Statuses = []Status{StatusConnecting, StatusNormal, StatusPriority, StatusPaused, StatusDisconnected}

func (s Status) String() string { return string(s) }

// DefaultIdleAfter is how long a panel may go without a new sample before it
// counts as idle.
const DefaultIdleAfter = 6 * time.Second

// Policy decides whether a panel warrants priority attention.
type Policy interface {
	Name() string
	Priority(distance telemetry.Number, ctrl telemetry.ControllerState) bool
}

// ThresholdPolicy flags a vehicle as priority when it is moving closer than
// Threshold. Distances at or below Floor are treated as a parked vehicle.
type ThresholdPolicy struct {
	Floor     float64
	Threshold float64
}

func (p ThresholdPolicy) Name() string { return config.PolicyThreshold }

// Priority is true iff Floor < distance <= Threshold.
func (p ThresholdPolicy) Priority(distance telemetry.Number, _ telemetry.ControllerState) bool {
	if !distance.Valid {
		return false
	}
	return distance.Value > p.Floor && distance.Value <= p.Threshold
}

// ControllerModePolicy follows the traffic controller: every panel is
// priority while the controller reports mode "priority".
type ControllerModePolicy struct{}

func (ControllerModePolicy) Name() string { return config.PolicyControllerMode }

func (ControllerModePolicy) Priority(_ telemetry.Number, ctrl telemetry.ControllerState) bool {
	return strings.EqualFold(strings.TrimSpace(ctrl.Mode), "priority")
}

// NewPolicy builds the policy named in the classify config.
func NewPolicy(c config.ClassifyConfig) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(c.Policy)) {
	case "", config.PolicyThreshold:
		return ThresholdPolicy{Floor: c.StationaryBelow, Threshold: c.Threshold}, nil
	case config.PolicyControllerMode:
		return ControllerModePolicy{}, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown classify policy %q", c.Policy),
			fmt.Sprintf("Use %q or %q", config.PolicyThreshold, config.PolicyControllerMode))
	}
}

// PanelState is one panel's classification for a cycle.
type PanelState struct {
	ID    string
	Label string

	Priority bool
	Idle     bool
	Distance telemetry.Number

	Bearing   telemetry.Number
	Direction string
	Appended  bool
	Samples   int
	SinceLast time.Duration
	Event     telemetry.Event
}

// Classifier turns panel readings into panel states.
type Classifier struct {
	Policy    Policy
	IdleAfter time.Duration
}

// Classify computes priority and idleness for one panel.
func (c Classifier) Classify(p *Panel, r Reading, ctrl telemetry.ControllerState, now time.Time) PanelState {
	idleAfter := c.IdleAfter
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}
	since := p.SinceLastSample(now)
	return PanelState{
		ID:        p.ID,
		Label:     p.Label,
		Priority:  c.Policy.Priority(r.Distance, ctrl),
		Idle:      since > idleAfter,
		Distance:  r.Distance,
		Bearing:   r.Bearing,
		Direction: r.Direction,
		Appended:  r.Appended,
		Samples:   p.SampleCount(),
		SinceLast: since,
		Event:     r.Event,
	}
}

// Aggregate derives the dashboard status from a successful cycle: all idle
// wins over any priority flag, then any priority, then normal.
func Aggregate(states []PanelState) Status {
	if len(states) == 0 {
		return StatusNormal
	}

	allIdle, anyPriority := true, false
	for _, s := range states {
		allIdle = allIdle && s.Idle
		anyPriority = anyPriority || s.Priority
	}

	switch {
	case allIdle:
		return StatusPaused
	case anyPriority:
		return StatusPriority
	default:
		return StatusNormal
	}
}
