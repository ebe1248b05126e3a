package dashboard

import (
	"testing"
	"time"

	"github.com/rileyhilliard/pvdash/internal/config"
	"github.com/rileyhilliard/pvdash/internal/errors"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdPolicy_Boundaries(t *testing.T) {
	p := ThresholdPolicy{Floor: 1, Threshold: 200}

	tests := []struct {
		name     string
		distance telemetry.Number
		want     bool
	}{
		{"at floor", telemetry.Num(1.0), false},
		{"just above floor", telemetry.Num(1.01), true},
		{"inside", telemetry.Num(150), true},
		{"at threshold", telemetry.Num(200), true},
		{"just above threshold", telemetry.Num(200.01), false},
		{"zero", telemetry.Num(0), false},
		{"negative", telemetry.Num(-5), false},
		{"missing", telemetry.Number{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Priority(tt.distance, telemetry.ControllerState{}))
		})
	}
}

func TestControllerModePolicy(t *testing.T) {
	p := ControllerModePolicy{}
	tests := []struct {
		mode string
		want bool
	}{
		{"priority", true},
		{"PRIORITY", true},
		{" priority ", true},
		{"normal", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			// Distance is irrelevant for this policy.
			assert.Equal(t, tt.want, p.Priority(telemetry.Num(5000), telemetry.ControllerState{Mode: tt.mode}))
		})
	}
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		want    string
		wantErr bool
	}{
		{"empty defaults to threshold", "", config.PolicyThreshold, false},
		{"threshold", "threshold", config.PolicyThreshold, false},
		{"controller mode", "controller-mode", config.PolicyControllerMode, false},
		{"case insensitive", "Controller-Mode", config.PolicyControllerMode, false},
		{"unknown", "nearest", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(config.ClassifyConfig{Policy: tt.policy, Threshold: 200, StationaryBelow: 1})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestNewPolicy_ThresholdValues(t *testing.T) {
	p, err := NewPolicy(config.ClassifyConfig{Threshold: 50, StationaryBelow: 2})
	require.NoError(t, err)
	assert.Equal(t, ThresholdPolicy{Floor: 2, Threshold: 50}, p)
}

func TestClassifier_Idle(t *testing.T) {
	c := Classifier{Policy: ThresholdPolicy{Floor: 1, Threshold: 200}, IdleAfter: 6 * time.Second}

	tests := []struct {
		name  string
		since time.Duration
		want  bool
	}{
		{"fresh", 0, false},
		{"exactly six seconds", 6 * time.Second, false},
		{"past six seconds", 6*time.Second + time.Millisecond, true},
		{"long gone", time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPanel()
			st := c.Classify(p, Reading{}, telemetry.ControllerState{}, t0.Add(tt.since))
			assert.Equal(t, tt.want, st.Idle)
			assert.Equal(t, tt.since, st.SinceLast)
		})
	}
}

func TestClassifier_DefaultIdleAfter(t *testing.T) {
	c := Classifier{Policy: ControllerModePolicy{}}
	p := newTestPanel()
	assert.False(t, c.Classify(p, Reading{}, telemetry.ControllerState{}, t0.Add(DefaultIdleAfter)).Idle)
	assert.True(t, c.Classify(p, Reading{}, telemetry.ControllerState{}, t0.Add(DefaultIdleAfter+time.Second)).Idle)
}

func TestClassifier_CopiesReading(t *testing.T) {
	c := Classifier{Policy: ThresholdPolicy{Floor: 1, Threshold: 200}, IdleAfter: DefaultIdleAfter}
	p := newTestPanel()
	r := p.Update(event(150, "100"), telemetry.ControllerState{Direction: "NS"}, t0)

	st := c.Classify(p, r, telemetry.ControllerState{Direction: "NS"}, t0)
	assert.Equal(t, "AMB001", st.ID)
	assert.Equal(t, "Ambulance", st.Label)
	assert.True(t, st.Priority)
	assert.False(t, st.Idle)
	assert.True(t, st.Appended)
	assert.Equal(t, "NS", st.Direction)
	assert.Equal(t, 1, st.Samples)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		states []PanelState
		want   Status
	}{
		{"no panels", nil, StatusNormal},
		{"all normal", []PanelState{{}, {}}, StatusNormal},
		{"one priority", []PanelState{{Priority: true}, {}}, StatusPriority},
		{"one idle", []PanelState{{Idle: true}, {}}, StatusNormal},
		{"idle and priority", []PanelState{{Idle: true}, {Priority: true}}, StatusPriority},
		{"all idle", []PanelState{{Idle: true}, {Idle: true}}, StatusPaused},
		{"all idle beats priority", []PanelState{{Idle: true, Priority: true}, {Idle: true}}, StatusPaused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.states))
		})
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "PRIORITY", StatusPriority.String())
	assert.Len(t, Statuses, 5)
}
