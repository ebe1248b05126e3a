package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// Outcome is the result of one poll cycle.
type Outcome struct {
	// ID correlates the log lines of one cycle.
	ID       string
	Started  time.Time
	Finished time.Time

	// Panels is nil when the cycle failed.
	Panels     []PanelState
	Controller telemetry.ControllerState
	Status     Status
	Nearest    float64
	NextDelay  time.Duration
	Err        error
}

// OK reports whether the cycle fetched every payload.
func (o *Outcome) OK() bool {
	return o != nil && o.Err == nil
}

// Duration is how long the cycle took.
func (o *Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

// Observer is notified after every completed cycle.
type Observer interface {
	ObserveCycle(o *Outcome)
}

// Engine owns the panels and everything needed to run a cycle: the fetch
// source, the priority policy and the cadence. It is not safe for concurrent
// use; callers run one cycle at a time.
type Engine struct {
	ids        []string
	panels     []*Panel
	source     telemetry.Source
	classifier Classifier
	cadence    Cadence
	observers  []Observer
	log        logger.Logger
	now        func() time.Time

	last       *Outcome
	lastStates []PanelState
	lastCtrl   telemetry.ControllerState
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithObserver adds a cycle observer (metrics, exporters).
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// NewEngine creates an engine with one panel per configured vehicle.
func NewEngine(cfg *config.Config, src telemetry.Source, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrConfig, "No config provided", "")
	}
	policy, err := NewPolicy(cfg.Classify)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		source: src,
		classifier: Classifier{
			Policy:    policy,
			IdleAfter: cfg.Classify.IdleAfter,
		},
		cadence: NewCadence(cfg.Schedule, cfg.Classify.Threshold),
		log:     logger.Noop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	created := e.now()
	for _, v := range cfg.Vehicles {
		e.ids = append(e.ids, v.ID)
		e.panels = append(e.panels, NewPanel(v, cfg.Dashboard.HistorySize, created))
	}
	return e, nil
}

// IDs returns the vehicle ids in panel order.
func (e *Engine) IDs() []string {
	return append([]string(nil), e.ids...)
}

// Panels returns the panels in config order.
func (e *Engine) Panels() []*Panel {
	return e.panels
}

// Series copies every panel's history.
func (e *Engine) Series() []Series {
	out := make([]Series, len(e.panels))
	for i, p := range e.panels {
		out[i] = Series{ID: p.ID, Label: p.Label, Color: p.Color, Samples: p.Samples()}
	}
	return out
}

// Policy returns the active priority policy.
func (e *Engine) Policy() Policy {
	return e.classifier.Policy
}

// Cadence returns the scheduling cadence.
func (e *Engine) Cadence() Cadence {
	return e.cadence
}

// Last returns the most recent outcome, or nil before the first cycle.
func (e *Engine) Last() *Outcome {
	return e.last
}

// States returns the panel states of the last successful cycle. They stay
// on screen, stale, while the upstreams are unreachable.
func (e *Engine) States() []PanelState {
	return e.lastStates
}

// Controller returns the controller state of the last successful cycle.
func (e *Engine) Controller() telemetry.ControllerState {
	return e.lastCtrl
}

// Status is the current badge: CONNECTING until a cycle completes.
func (e *Engine) Status() Status {
	if e.last == nil {
		return StatusConnecting
	}
	return e.last.Status
}

// Fetch gathers one cycle's payloads. It reads no mutable engine state, so
// it may run on another goroutine while the owner keeps rendering.
func (e *Engine) Fetch(ctx context.Context) (*telemetry.Snapshot, error) {
	return e.source.Fetch(ctx, e.ids)
}

// Complete applies a fetch result to the panels and decides the next delay.
// A failed fetch leaves the panels untouched and forces the normal cadence.
func (e *Engine) Complete(started time.Time, snap *telemetry.Snapshot, err error) *Outcome {
	now := e.now()
	o := &Outcome{
		ID:       shortID(),
		Started:  started,
		Finished: now,
	}

	if err == nil && snap == nil {
		err = errors.NewFetchCycleFailed(nil)
	}

	if err != nil {
		o.Err = err
		o.Status = StatusDisconnected
		o.Nearest = math.Inf(1)
		o.NextDelay = e.cadence.NextDelay(o.Nearest)
		e.log.Warn("[%s] %s; retrying in %s", o.ID, errors.Summary(err), o.NextDelay)
	} else {
		o.Controller = snap.Controller
		o.Panels = make([]PanelState, len(e.panels))
		for i, p := range e.panels {
			ev, _ := snap.Event(p.ID)
			r := p.Update(ev, snap.Controller, now)
			o.Panels[i] = e.classifier.Classify(p, r, snap.Controller, now)
		}
		o.Status = Aggregate(o.Panels)
		o.Nearest = NearestDistance(o.Panels)
		o.NextDelay = e.cadence.NextDelay(o.Nearest)
		e.lastStates = o.Panels
		e.lastCtrl = snap.Controller
		e.log.Debug("[%s] status=%s nearest=%s next=%s in %s",
			o.ID, o.Status, FormatDistance(o.Nearest), o.NextDelay, o.Duration())
	}

	e.last = o
	for _, obs := range e.observers {
		obs.ObserveCycle(o)
	}
	return o
}

// Cycle runs one full fetch, classify and schedule pass.
func (e *Engine) Cycle(ctx context.Context) *Outcome {
	started := e.now()
	snap, err := e.Fetch(ctx)
	return e.Complete(started, snap, err)
}

func shortID() string {
	return uuid.NewString()[:8]
}
