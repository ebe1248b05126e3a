package cli

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statusEvents = map[string]string{
	"AMB001":  `{"vehicle": "AMB001", "distance_m": 120.5, "bearing": 42, "direction": "approaching", "ts": 1712000001}`,
	"FIRT001": `{"vehicle": "FIRT001", "distance_m": 850, "bearing": 190, "direction": "leaving", "ts": 1712000002}`,
}

const statusState = `{"mode": "priority", "direction": "north"}`

// statusEnvelope mirrors JSONEnvelope with the status payload typed.
type statusEnvelope struct {
	Success bool         `json:"success"`
	Data    StatusOutput `json:"data"`
	Error   *JSONError   `json:"error"`
}

func TestStatusJSON(t *testing.T) {
	srv := newUpstream(t, statusEvents, statusState)
	cfg := writeTestConfig(t, srv.URL)

	stdout, stderr, code := runCLI(t, "--config", cfg, "status", "--json")
	require.Equal(t, 0, code, stderr)

	var env statusEnvelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env), stdout)
	require.True(t, env.Success)
	assert.Nil(t, env.Error)

	out := env.Data
	assert.Equal(t, string(dashboard.StatusPriority), out.Status)
	assert.Equal(t, "threshold", out.Policy)
	require.NotNil(t, out.Nearest)
	assert.InDelta(t, 120.5, *out.Nearest, 1e-9)
	assert.Equal(t, ControllerStatus{Mode: "priority", Direction: "north"}, out.Controller)

	require.Len(t, out.Vehicles, 2)
	amb := out.Vehicles[0]
	assert.Equal(t, "AMB001", amb.ID)
	assert.Equal(t, "Ambulance", amb.Label)
	require.NotNil(t, amb.Distance)
	assert.InDelta(t, 120.5, *amb.Distance, 1e-9)
	require.NotNil(t, amb.Bearing)
	assert.InDelta(t, 42.0, *amb.Bearing, 1e-9)
	assert.True(t, amb.Priority)
	assert.False(t, amb.Idle)

	fire := out.Vehicles[1]
	assert.Equal(t, "FIRT001", fire.ID)
	assert.False(t, fire.Priority, "850 m is outside the threshold")
}

func TestStatusJSONMissingDistance(t *testing.T) {
	srv := newUpstream(t, map[string]string{}, `{"mode": "normal"}`)
	cfg := writeTestConfig(t, srv.URL)

	stdout, stderr, code := runCLI(t, "--config", cfg, "status", "--json")
	require.Equal(t, 0, code, stderr)

	var env statusEnvelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, string(dashboard.StatusNormal), env.Data.Status)
	assert.Nil(t, env.Data.Nearest, "no vehicle reported a distance")
	for _, v := range env.Data.Vehicles {
		assert.Nil(t, v.Distance, v.ID)
		assert.False(t, v.Priority, v.ID)
	}
}

func TestStatusText(t *testing.T) {
	srv := newUpstream(t, statusEvents, statusState)
	cfg := writeTestConfig(t, srv.URL)

	stdout, stderr, code := runCLI(t, "--config", cfg, "status")
	require.Equal(t, 0, code, stderr)

	out := ansi.Strip(stdout)
	assert.Contains(t, out, "pvdash")
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "threshold policy")
	assert.Contains(t, out, "controller priority")
	assert.Contains(t, out, "Ambulance")
	assert.Contains(t, out, "120.5 m")
	assert.Contains(t, out, "Firetruck")
	assert.Contains(t, out, "direction north")
	assert.Contains(t, out, srv.URL+"/api/last_event")
	assert.Contains(t, out, "UPSTREAM")
}

// deadUpstream returns the URL of a server that is no longer listening.
func deadUpstream(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return url
}

func TestStatusUnreachable(t *testing.T) {
	cfg := writeTestConfig(t, deadUpstream(t))

	stdout, stderr, code := runCLI(t, "--config", cfg, "status")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Fetch cycle failed")
}

func TestStatusUnreachableJSON(t *testing.T) {
	cfg := writeTestConfig(t, deadUpstream(t))

	stdout, stderr, code := runCLI(t, "--config", cfg, "status", "--json")
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr, "the error is reported in the envelope only")

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env), stdout)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeUpstreamUnreachable, env.Error.Code)
	assert.Equal(t, "Fetch cycle failed", env.Error.Message)
	assert.NotEmpty(t, env.Error.Suggestion)
}

func TestStatusMissingConfigJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "--config", "/nonexistent/.pvdash.yaml", "status", "--json")
	assert.Equal(t, 1, code)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal([]byte(stdout), &env), stdout)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigNotFound, env.Error.Code)
}

func TestVehicleRowState(t *testing.T) {
	tests := []struct {
		name  string
		state dashboard.PanelState
		want  string
	}{
		{"no distance", dashboard.PanelState{}, "none"},
		{"idle wins over priority", dashboard.PanelState{Distance: telemetry.Num(50), Idle: true, Priority: true}, "idle"},
		{"priority", dashboard.PanelState{Distance: telemetry.Num(50), Priority: true}, "priority"},
		{"normal", dashboard.PanelState{Distance: telemetry.Num(500)}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vehicleRowState(tt.state))
		})
	}
}
