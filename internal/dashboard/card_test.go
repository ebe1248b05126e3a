package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestRenderTrend(t *testing.T) {
	p := newTestPanel()
	assert.Contains(t, renderTrend(p, 30, 6), "no samples yet")

	p.Update(event(150, "1"), telemetry.ControllerState{}, t0)
	p.Update(event(120, "2"), telemetry.ControllerState{}, t0)
	out := renderTrend(p, 30, 6)
	assert.NotContains(t, out, "no samples yet")
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.Contains(t, out, "now")
}

func TestRenderCard(t *testing.T) {
	m, _, clock := newTestModel(t, nearResult())
	m, _ = runCycle(t, m, m.fetchCmd(clock.Now()))

	states := m.engine.States()
	card := m.renderCard(m.engine.Panels()[0], &states[0], 48, false)
	assert.Contains(t, card, "A")
	assert.Contains(t, card, "PRIORITY")
	assert.Contains(t, card, "150.0 m")
	assert.Contains(t, card, "NS")
	assert.Contains(t, card, "1/50")

	card = m.renderCard(m.engine.Panels()[1], &states[1], 48, true)
	assert.Contains(t, card, "NORMAL")
	assert.Contains(t, card, "300.0 m")
}

func TestHealthDot(t *testing.T) {
	m, _, clock := newTestModel(t, nearResult())
	m, _ = runCycle(t, m, m.fetchCmd(clock.Now()))

	assert.Equal(t, DotLive, ansi.Strip(m.healthDot(&PanelState{})))
	assert.Equal(t, DotIdle, ansi.Strip(m.healthDot(&PanelState{Idle: true})))
	assert.Equal(t, DotPending, ansi.Strip(m.healthDot(nil)))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "  {\n    \"a\": 1\n  }", prettyJSON([]byte(`{"a":1}`)))
	assert.Equal(t, "  not json", prettyJSON([]byte("not json")))
}
