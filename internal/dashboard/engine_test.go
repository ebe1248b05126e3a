package dashboard

import (
	"context"
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/logger"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns queued snapshots or errors, one per Fetch.
type fakeSource struct {
	results []fakeResult
	calls   int
	gotIDs  []string
}

type fakeResult struct {
	events map[string]telemetry.Event
	ctrl   telemetry.ControllerState
	err    error
}

func (f *fakeSource) Fetch(ctx context.Context, ids []string) (*telemetry.Snapshot, error) {
	f.gotIDs = ids
	if err := ctx.Err(); err != nil {
		return nil, errors.NewFetchCycleFailed(err)
	}
	if f.calls >= len(f.results) {
		return nil, errors.NewFetchCycleFailed(stderrors.New("no more results"))
	}
	r := f.results[f.calls]
	f.calls++
	if r.err != nil {
		return nil, errors.NewFetchCycleFailed(r.err)
	}
	snap := &telemetry.Snapshot{IDs: ids, Controller: r.ctrl}
	for _, id := range ids {
		snap.Events = append(snap.Events, r.events[id])
	}
	return snap, nil
}

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingObserver struct{ outcomes []*Outcome }

func (r *recordingObserver) ObserveCycle(o *Outcome) { r.outcomes = append(r.outcomes, o) }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Vehicles = []config.Vehicle{
		{ID: "A", Color: "#60a5fa"},
		{ID: "B", Color: "#22c55e"},
	}
	return cfg
}

func newTestEngine(t *testing.T, src telemetry.Source, opts ...EngineOption) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: t0}
	opts = append([]EngineOption{WithClock(clock.Now)}, opts...)
	e, err := NewEngine(testConfig(), src, opts...)
	require.NoError(t, err)
	return e, clock
}

func TestNewEngine(t *testing.T) {
	e, _ := newTestEngine(t, &fakeSource{})
	assert.Equal(t, []string{"A", "B"}, e.IDs())
	require.Len(t, e.Panels(), 2)
	assert.Equal(t, StatusConnecting, e.Status())
	assert.Nil(t, e.Last())
	assert.Nil(t, e.States())
	assert.Equal(t, config.PolicyThreshold, e.Policy().Name())
	assert.Equal(t, DefaultCadence(), e.Cadence())
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(nil, &fakeSource{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	cfg := testConfig()
	cfg.Classify.Policy = "bogus"
	_, err = NewEngine(cfg, &fakeSource{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestEngine_Cycle_Priority(t *testing.T) {
	src := &fakeSource{results: []fakeResult{{
		events: map[string]telemetry.Event{
			"A": {Distance: telemetry.Num(150), TS: telemetry.TS("100")},
			"B": {Distance: telemetry.Num(300), TS: telemetry.TS("200")},
		},
		ctrl: telemetry.ControllerState{Mode: "normal", Direction: "NS"},
	}}}
	obs := &recordingObserver{}
	e, _ := newTestEngine(t, src, WithObserver(obs))

	o := e.Cycle(context.Background())
	require.True(t, o.OK())
	assert.Equal(t, []string{"A", "B"}, src.gotIDs)

	require.Len(t, o.Panels, 2)
	assert.True(t, o.Panels[0].Priority)
	assert.False(t, o.Panels[1].Priority)
	assert.Equal(t, "NS", o.Panels[0].Direction)
	assert.Equal(t, StatusPriority, o.Status)
	assert.Equal(t, 150.0, o.Nearest)
	assert.Equal(t, 4*time.Second, o.NextDelay)
	assert.Len(t, o.ID, 8)

	assert.Equal(t, []float64{150}, e.Panels()[0].Samples())
	assert.Equal(t, []float64{300}, e.Panels()[1].Samples())
	assert.Equal(t, StatusPriority, e.Status())
	assert.Equal(t, "NS", e.Controller().Direction)
	assert.Equal(t, o.Panels, e.States())

	require.Len(t, obs.outcomes, 1)
	assert.Same(t, o, obs.outcomes[0])
}

func TestEngine_Cycle_FarAway(t *testing.T) {
	src := &fakeSource{results: []fakeResult{{
		events: map[string]telemetry.Event{
			"A": {Distance: telemetry.Num(500), TS: telemetry.TS("1")},
			"B": {},
		},
	}}}
	e, _ := newTestEngine(t, src)

	o := e.Cycle(context.Background())
	assert.Equal(t, StatusNormal, o.Status)
	assert.Equal(t, 500.0, o.Nearest)
	assert.Equal(t, 2*time.Second, o.NextDelay)
	assert.Equal(t, NoDirection, o.Panels[1].Direction)
}

func TestEngine_Cycle_Failure(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{events: map[string]telemetry.Event{
			"A": {Distance: telemetry.Num(50), TS: telemetry.TS("1")},
			"B": {Distance: telemetry.Num(60), TS: telemetry.TS("1")},
		}},
		{err: stderrors.New("connection refused")},
	}}
	obs := &recordingObserver{}
	log := logger.NewBufferLogger()
	e, _ := newTestEngine(t, src, WithObserver(obs), WithLogger(log))

	first := e.Cycle(context.Background())
	require.True(t, first.OK())

	o := e.Cycle(context.Background())
	require.False(t, o.OK())
	assert.True(t, errors.IsCode(o.Err, errors.ErrFetch))
	assert.Equal(t, StatusDisconnected, o.Status)
	assert.True(t, math.IsInf(o.Nearest, 1))
	assert.Equal(t, 2*time.Second, o.NextDelay)
	assert.Nil(t, o.Panels)

	// Panels and the last good states are left as they were.
	assert.Equal(t, []float64{50}, e.Panels()[0].Samples())
	assert.Equal(t, first.Panels, e.States())
	assert.Equal(t, StatusDisconnected, e.Status())

	assert.Len(t, obs.outcomes, 2)
	assert.True(t, log.HasLevel("warn"))
}

func TestEngine_Complete_NilSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, &fakeSource{})
	o := e.Complete(t0, nil, nil)
	assert.False(t, o.OK())
	assert.Equal(t, StatusDisconnected, o.Status)
}

func TestEngine_Cycle_GoesIdle(t *testing.T) {
	ev := map[string]telemetry.Event{
		"A": {Distance: telemetry.Num(150), TS: telemetry.TS("1")},
		"B": {Distance: telemetry.Num(300), TS: telemetry.TS("1")},
	}
	// Same timestamps every cycle: nothing new arrives after the first.
	src := &fakeSource{results: []fakeResult{{events: ev}, {events: ev}, {events: ev}}}
	e, clock := newTestEngine(t, src)

	o := e.Cycle(context.Background())
	assert.Equal(t, StatusPriority, o.Status)

	clock.Advance(4 * time.Second)
	o = e.Cycle(context.Background())
	assert.Equal(t, StatusPriority, o.Status)
	assert.False(t, o.Panels[0].Appended)

	clock.Advance(3 * time.Second)
	o = e.Cycle(context.Background())
	assert.True(t, o.Panels[0].Idle)
	assert.True(t, o.Panels[1].Idle)
	assert.Equal(t, StatusPaused, o.Status)
	assert.Equal(t, []float64{150}, e.Panels()[0].Samples())
}

func TestEngine_Cycle_NeverReported(t *testing.T) {
	src := &fakeSource{results: []fakeResult{{events: map[string]telemetry.Event{}}}}
	e, clock := newTestEngine(t, src)

	clock.Advance(7 * time.Second)
	o := e.Cycle(context.Background())
	assert.Equal(t, StatusPaused, o.Status)
	assert.True(t, math.IsInf(o.Nearest, 1))
}

func TestEngine_Series(t *testing.T) {
	src := &fakeSource{results: []fakeResult{{events: map[string]telemetry.Event{
		"A": {Distance: telemetry.Num(10), TS: telemetry.TS("1")},
	}}}}
	e, _ := newTestEngine(t, src)
	e.Cycle(context.Background())

	series := e.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "A", series[0].ID)
	assert.Equal(t, []float64{10}, series[0].Samples)
	assert.Empty(t, series[1].Samples)

	series[0].Samples[0] = 99
	assert.Equal(t, []float64{10}, e.Panels()[0].Samples())
}
